package syncutil

// OnceCell is a lazily-initialized value: the first call to GetOrInit (across
// however many concurrent callers) runs the initializer and every later call,
// on any goroutine, observes the same value without re-running it. A zero
// OnceCell is ready to use.
type OnceCell[T any] struct {
	once  Once
	value T
}

// Get returns the stored value and true if the cell has been initialized,
// or the zero value and false otherwise. Never blocks.
func (c *OnceCell[T]) Get() (T, bool) {
	if c.once.IsCompleted() {
		return c.value, true
	}
	var zero T
	return zero, false
}

// GetOrInit returns the cell's value, running init to produce and store it
// if this is the first call. If init panics, the cell remains uninitialized
// (the underlying Once is poisoned) and the panic propagates to the caller;
// every subsequent GetOrInit panics too until the caller restores the cell
// with a fresh zero value.
func (c *OnceCell[T]) GetOrInit(init func() T) T {
	c.once.CallOnce(func() {
		c.value = init()
	})
	return c.value
}

// Wait blocks until the cell is initialized and returns its value, panicking
// if initialization previously panicked.
func (c *OnceCell[T]) Wait() T {
	c.once.Wait()
	return c.value
}
