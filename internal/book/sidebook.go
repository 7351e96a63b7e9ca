package book

import "container/heap"

// priceHeap is a lazily-cleaned binary heap of candidate best prices for one
// side, ordered so Pop always yields the next candidate toward the book's
// best price. Stale entries (price no longer present as a live level) are
// discarded when encountered rather than eagerly removed, the same
// amortised-cost trade-off the matching engine makes for cancelled orders:
// cheap to push, lazy to clean.
type priceHeap struct {
	prices []Price
	side   Side
}

func (h priceHeap) Len() int { return len(h.prices) }

func (h priceHeap) Less(i, j int) bool {
	if h.side == Buy {
		return h.prices[i] > h.prices[j] // max-heap for bids
	}
	return h.prices[i] < h.prices[j] // min-heap for asks
}

func (h priceHeap) Swap(i, j int) { h.prices[i], h.prices[j] = h.prices[j], h.prices[i] }

func (h *priceHeap) Push(x interface{}) { h.prices = append(h.prices, x.(Price)) }

func (h *priceHeap) Pop() interface{} {
	old := h.prices
	n := len(old)
	p := old[n-1]
	h.prices = old[:n-1]
	return p
}

// SideBook is an ordered Price -> Level map for one side of the book, with
// an O(1)-amortised cached best price.
type SideBook struct {
	Side   Side
	levels map[Price]*Level
	prices *priceHeap

	best      Price
	haveBest  bool
}

// NewSideBook constructs an empty side book.
func NewSideBook(side Side) *SideBook {
	sb := &SideBook{
		Side:   side,
		levels: make(map[Price]*Level),
		prices: &priceHeap{side: side},
	}
	heap.Init(sb.prices)
	return sb
}

// levelFor returns the level at price, creating and registering it (in both
// the map and the price heap) if it does not yet exist.
func (sb *SideBook) levelFor(price Price) *Level {
	if lvl, ok := sb.levels[price]; ok {
		return lvl
	}
	lvl := newLevel(price)
	sb.levels[price] = lvl
	heap.Push(sb.prices, price)
	sb.invalidateIfWorse(price)
	return lvl
}

// invalidateIfWorse refreshes the cached best price if the newly-touched
// price is better than (or no best is cached yet).
func (sb *SideBook) invalidateIfWorse(price Price) {
	if !sb.haveBest || sb.better(price, sb.best) {
		sb.best = price
		sb.haveBest = true
	}
}

func (sb *SideBook) better(a, b Price) bool {
	if sb.Side == Buy {
		return a > b
	}
	return a < b
}

// Level returns the level at price if one exists, without creating it.
func (sb *SideBook) Level(price Price) (*Level, bool) {
	lvl, ok := sb.levels[price]
	return lvl, ok
}

// Insert adds a live order reference at price, creating the level if
// needed, and returns the level's new entry handle for O(1) cancel lookup.
func (sb *SideBook) Insert(price Price, id OrderID, qty Quantity) *levelHandle {
	lvl := sb.levelFor(price)
	e := lvl.push(id, qty)
	return &levelHandle{level: lvl, entry: e}
}

// Best returns the best live price on this side and whether one exists.
// The cache is revalidated lazily here by popping stale/empty
// candidates off the heap until a live one is found.
func (sb *SideBook) Best() (Price, bool) {
	for {
		if lvl, ok := sb.levels[sb.best]; ok && sb.haveBest && !lvl.Empty() {
			return sb.best, true
		}
		if sb.prices.Len() == 0 {
			sb.haveBest = false
			return 0, false
		}
		candidate := heap.Pop(sb.prices).(Price)
		lvl, ok := sb.levels[candidate]
		if !ok || lvl.Empty() {
			continue
		}
		sb.best = candidate
		sb.haveBest = true
		heap.Push(sb.prices, candidate) // restore: we only peeked the order
		return sb.best, true
	}
}

// removeLevelIfEmpty drops a level from the map once it has no live
// entries left, so stale best-price candidates don't accumulate forever.
// The price itself is left in the heap (lazily discarded on next Best()).
func (sb *SideBook) removeLevelIfEmpty(price Price) {
	if lvl, ok := sb.levels[price]; ok && lvl.Empty() {
		delete(sb.levels, price)
		if sb.haveBest && sb.best == price {
			sb.haveBest = false
		}
	}
}

// Levels returns every level with at least one live entry, unordered. The
// snapshot package is responsible for sorting by side convention.
func (sb *SideBook) Levels() []*Level {
	out := make([]*Level, 0, len(sb.levels))
	for _, lvl := range sb.levels {
		if !lvl.Empty() {
			out = append(out, lvl)
		}
	}
	return out
}

// Compact removes tombstones from every level on this side, preserving
// FIFO order of the live remainder.
func (sb *SideBook) Compact() {
	for price, lvl := range sb.levels {
		lvl.Compact()
		if lvl.head == nil {
			delete(sb.levels, price)
		}
	}
}

// levelHandle is an O(1) handle from the order index into a specific FIFO
// entry, used by cancel to avoid walking the level.
type levelHandle struct {
	level *Level
	entry *entry
}
