package book

// indexEntry couples an order record to its live position on the book (if
// any), so cancel can go from OrderId to tombstone in O(1) without walking
// a level.
type indexEntry struct {
	order  *Order
	handle *levelHandle // nil once the order is terminal
}

// OrderIndex maps OrderId to order record, regular or stop. Terminal
// orders remain here until ClearOrderHistory prunes them.
type OrderIndex struct {
	entries map[OrderID]*indexEntry
}

// NewOrderIndex constructs an empty index.
func NewOrderIndex() *OrderIndex {
	return &OrderIndex{entries: make(map[OrderID]*indexEntry)}
}

// Put registers a newly-accepted order with its resting position (handle
// may be nil for an order that did not rest, e.g. fully filled or IOC).
func (idx *OrderIndex) Put(o *Order, handle *levelHandle) {
	idx.entries[o.ID] = &indexEntry{order: o, handle: handle}
}

// Get returns the order record for id, if known.
func (idx *OrderIndex) Get(id OrderID) (*Order, bool) {
	e, ok := idx.entries[id]
	if !ok {
		return nil, false
	}
	return e.order, true
}

// SetHandle attaches or clears the resting-position handle for an order
// already in the index (used once an order that matched partially is
// inserted onto the book, or once it is fully consumed/cancelled).
func (idx *OrderIndex) SetHandle(id OrderID, handle *levelHandle) {
	if e, ok := idx.entries[id]; ok {
		e.handle = handle
	}
}

func (idx *OrderIndex) handleFor(id OrderID) (*levelHandle, bool) {
	e, ok := idx.entries[id]
	if !ok || e.handle == nil {
		return nil, false
	}
	return e.handle, true
}

// Delete removes an order's record entirely. Used only by pruning
// (ClearOrderHistory); never called on an active order.
func (idx *OrderIndex) Delete(id OrderID) {
	delete(idx.entries, id)
}

// Len returns the number of order records currently indexed (active and
// terminal).
func (idx *OrderIndex) Len() int {
	return len(idx.entries)
}

// PruneTerminal removes every terminal (Filled or Cancelled) order from the
// index. Safe invariant 5: terminal orders never have a live level
// entry, so nothing else references them.
func (idx *OrderIndex) PruneTerminal() int {
	pruned := 0
	for id, e := range idx.entries {
		if !e.order.Status.IsActive() {
			delete(idx.entries, id)
			pruned++
		}
	}
	return pruned
}
