package book

// OrderBook composes both side books, the order index and the monotonic
// counters into the two-sided book described by spec. It exposes the
// primitives the matching engine, TIF dispatcher and stop subsystem are
// built on: insertion, O(1) cancel, and best-of-book reads. It never
// decides whether two orders cross — that is the matching engine's job
// (package matching) operating through these primitives.
type OrderBook struct {
	Bids *SideBook
	Asks *SideBook

	Index    *OrderIndex
	Counters *Counters

	// revision increments on every mutation; used by snapshot memoization
	// to invalidate cached projections without ever changing what they
	// compute (see book.Snapshotter).
	revision uint64
}

// New constructs an empty order book with counters starting at 1.
func New() *OrderBook {
	return &OrderBook{
		Bids:     NewSideBook(Buy),
		Asks:     NewSideBook(Sell),
		Index:    NewOrderIndex(),
		Counters: NewCounters(),
	}
}

// Side returns the side book for s.
func (ob *OrderBook) Side(s Side) *SideBook {
	if s == Buy {
		return ob.Bids
	}
	return ob.Asks
}

// Revision returns the current mutation counter, monotonically increasing.
func (ob *OrderBook) Revision() uint64 { return ob.revision }

func (ob *OrderBook) bump() { ob.revision++ }

// RestNew inserts a brand-new order onto the book for the first time,
// registering it in the index and on its side's level. It is the only path
// by which an order acquires a resting position.
func (ob *OrderBook) RestNew(o *Order) {
	handle := ob.Side(o.Side).Insert(o.Price, o.ID, o.Remaining)
	ob.Index.Put(o, handle)
	ob.bump()
}

// TrackTerminal registers a terminal (fully-filled or zero-remainder) order
// in the index without giving it a resting position. Needed so Get(id)
// keeps working for orders that traded completely on arrival.
func (ob *OrderBook) TrackTerminal(o *Order) {
	ob.Index.Put(o, nil)
	ob.bump()
}

// Get returns the order record for id.
func (ob *OrderBook) Get(id OrderID) (*Order, bool) {
	return ob.Index.Get(id)
}

// FrontOfBest returns the first live (non-tombstone) entry at the best
// price on side s, and that price, or ok=false if the side is empty.
// Tombstones encountered at the front are discarded permanently as part of
// this call.
func (ob *OrderBook) FrontOfBest(s Side) (price Price, id OrderID, qty Quantity, ok bool) {
	sb := ob.Side(s)
	p, has := sb.Best()
	if !has {
		return 0, 0, 0, false
	}
	lvl, _ := sb.Level(p)
	e := lvl.front()
	if e == nil {
		// Best level turned out to be fully tombstoned; drop it and retry
		// once more (Best() already revalidates the cache lazily, but the
		// emptied level needs to be dropped from the map too).
		sb.removeLevelIfEmpty(p)
		p2, has2 := sb.Best()
		if !has2 {
			return 0, 0, 0, false
		}
		lvl2, _ := sb.Level(p2)
		e2 := lvl2.front()
		if e2 == nil {
			return 0, 0, 0, false
		}
		return p2, e2.id, e2.qty, true
	}
	return p, e.id, e.qty, true
}

// FillFront consumes amount of quantity from the front entry at price on
// side s. If the entry is exhausted it is popped and its order's status
// flips to Filled; if the level is then empty it is dropped from the side
// book, invalidating the cached best price if needed.
// Returns the passive order whose quantity was just consumed.
func (ob *OrderBook) FillFront(s Side, price Price, amount Quantity) *Order {
	sb := ob.Side(s)
	lvl, ok := sb.Level(price)
	if !ok {
		return nil
	}
	e := lvl.front()
	if e == nil {
		return nil
	}
	passive, _ := ob.Index.Get(e.id)
	lvl.reduce(e, amount)
	passive.Remaining -= amount
	passive.Filled += amount

	if e.qty == 0 {
		lvl.popFront()
		passive.Status = Filled
		ob.Index.SetHandle(passive.ID, nil)
	} else {
		passive.Status = PartiallyFilled
	}

	if lvl.Empty() {
		sb.removeLevelIfEmpty(price)
	}
	ob.bump()
	return passive
}

// Cancel marks an active order cancelled, tombstoning its level entry in
// O(1) if it has one resting. Returns the quantity that was
// cancelled (the order's remaining quantity just before cancellation).
func (ob *OrderBook) Cancel(id OrderID) (Quantity, error) {
	o, ok := ob.Index.Get(id)
	if !ok {
		return 0, ErrOrderNotFound
	}
	if !o.Status.IsActive() {
		return 0, ErrOrderNotActive
	}

	cancelledQty := o.Remaining
	if handle, has := ob.Index.handleFor(id); has {
		handle.level.tombstoneEntry(handle.entry)
		if handle.level.Empty() {
			ob.Side(o.Side).removeLevelIfEmpty(o.Price)
		}
		ob.Index.SetHandle(id, nil)
	}

	o.Cancelled = cancelledQty
	o.Remaining = 0
	o.Status = Cancelled
	ob.bump()
	return cancelledQty, nil
}

// BestBid and BestAsk return the best price on each side, if any.
func (ob *OrderBook) BestBid() (Price, bool) { return ob.Bids.Best() }
func (ob *OrderBook) BestAsk() (Price, bool) { return ob.Asks.Best() }

// Crossed reports whether the book is currently crossed (should never be
// true between commands — invariant 1 of — but the matching engine
// checks this transiently while draining).
func (ob *OrderBook) Crossed() bool {
	bb, okB := ob.BestBid()
	ba, okA := ob.BestAsk()
	return okB && okA && bb >= ba
}

// Compact removes tombstones from both sides, preserving FIFO order of the
// live remainder. Invariant-preserving: never reorders live entries,
// never touches terminal-order bookkeeping.
func (ob *OrderBook) Compact() {
	ob.Bids.Compact()
	ob.Asks.Compact()
	ob.bump()
}

// ClearOrderHistory prunes terminal orders from the index. Returns
// the number of records pruned.
func (ob *OrderBook) ClearOrderHistory() int {
	n := ob.Index.PruneTerminal()
	ob.bump()
	return n
}
