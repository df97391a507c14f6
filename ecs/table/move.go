package table

// SwapRemoveAndDrop removes the entity at row by swapping it with the last
// row and dropping every column's components for the removed row. If the
// removed row was not the last row, the entity that used to be last is now
// at row — the caller must update its location index accordingly via the
// returned MovedEntity.
func (t *Table) SwapRemoveAndDrop(row TableRow) *MovedEntity {
	removal := int(row)
	last := t.EntityCount() - 1

	if removal != last {
		swapped := t.entities[last]
		t.entities[removal] = swapped
		t.entities = t.entities[:last]
		for _, c := range t.columns {
			c.swapDropNotLast(removal, last)
		}
		return &MovedEntity{Entity: swapped, NewRow: row}
	}

	t.entities = t.entities[:last]
	for _, c := range t.columns {
		c.dropItem(last)
	}
	return nil
}

// SwapRemoveAndForget behaves like SwapRemoveAndDrop but never calls a
// column's Dropper — used when the caller has already taken ownership of
// every cell in the row (e.g. about to move them elsewhere) and dropping
// here would double-free.
func (t *Table) SwapRemoveAndForget(row TableRow) *MovedEntity {
	removal := int(row)
	last := t.EntityCount() - 1

	if removal != last {
		swapped := t.entities[last]
		t.entities[removal] = swapped
		t.entities = t.entities[:last]
		for _, c := range t.columns {
			c.swapForgetNotLast(removal, last)
		}
		return &MovedEntity{Entity: swapped, NewRow: row}
	}

	t.entities = t.entities[:last]
	return nil
}

// MoveToAndDropMissing relocates the entity at row into other: every
// component column also present in other is moved across; columns with no
// counterpart in other are dropped. The source row is swap-removed from t.
func (t *Table) MoveToAndDropMissing(row TableRow, other *Table) *MovedEntity {
	src := int(row)
	last := t.EntityCount() - 1

	if src != last {
		moved := t.entities[src]
		swapped := t.entities[last]
		t.entities[src] = swapped
		t.entities = t.entities[:last]

		newRow := other.Allocate(moved)
		dst := int(newRow)
		for i, id := range t.idents {
			c := t.columns[i]
			if col, ok := other.GetTableCol(id); ok {
				c.moveItemTo(other.col(col), src, dst)
				c.swapForgetNotLast(src, last)
			} else {
				c.swapDropNotLast(src, last)
			}
		}
		return &MovedEntity{Entity: swapped, NewRow: row}
	}

	moved := t.entities[last]
	t.entities = t.entities[:last]

	newRow := other.Allocate(moved)
	dst := int(newRow)
	for i, id := range t.idents {
		c := t.columns[i]
		if col, ok := other.GetTableCol(id); ok {
			c.moveItemTo(other.col(col), src, dst)
		} else {
			c.dropItem(last)
		}
	}
	return nil
}

// MoveToAndForgetMissing behaves like MoveToAndDropMissing, but columns
// with no counterpart in other are forgotten rather than dropped — the
// caller is responsible for those cells having already been handled (or
// being intentionally leaked, e.g. types needing no cleanup).
func (t *Table) MoveToAndForgetMissing(row TableRow, other *Table) *MovedEntity {
	src := int(row)
	last := t.EntityCount() - 1

	if src != last {
		moved := t.entities[src]
		swapped := t.entities[last]
		t.entities[src] = swapped
		t.entities = t.entities[:last]

		newRow := other.Allocate(moved)
		dst := int(newRow)
		for i, id := range t.idents {
			c := t.columns[i]
			if col, ok := other.GetTableCol(id); ok {
				c.moveItemTo(other.col(col), src, dst)
			}
			c.swapForgetNotLast(src, last)
		}
		return &MovedEntity{Entity: swapped, NewRow: row}
	}

	moved := t.entities[last]
	t.entities = t.entities[:last]

	newRow := other.Allocate(moved)
	dst := int(newRow)
	for i, id := range t.idents {
		c := t.columns[i]
		if col, ok := other.GetTableCol(id); ok {
			c.moveItemTo(other.col(col), src, dst)
		}
	}
	return nil
}
