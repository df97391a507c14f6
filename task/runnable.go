// Package task provides the schedulable unit executors run (Runnable) and
// the handles callers use to await its result (Task, FallibleTask).
package task

// Runnable is a deferred unit of work, already closed over whatever channel
// or shared state it reports its outcome through. Scheduling a Runnable
// means handing the closure to a worker; "running" it to completion is
// simply calling it — unlike a poll-based future, a Runnable has no
// intermediate suspend points, since the goroutine that starts one runs it
// synchronously to the end.
type Runnable func()

// Spawner hands a freshly-built Runnable off to whatever scheduler backs a
// particular Spawn call: pushing it onto a GlobalExecutor's queue, a
// LocalExecutor's queue, or a ScopeExecutor's queue are all valid Spawners.
type Spawner func(Runnable)
