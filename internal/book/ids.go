package book

// Counters mints the three monotonically increasing identifier sequences
// the engine depends on for determinism: OrderId, TradeId and Timestamp.
// OrderId and TradeId are disjoint sequences; Timestamp advances only
// through Tick, which callers invoke alongside each OrderId or TradeId
// they mint.
//
// Counters is not safe for concurrent use — callers serialize access the
// same way they serialize all other mutation of a book.
type Counters struct {
	nextOrderID OrderID
	nextTradeID TradeID
	clock       Timestamp
}

// NewCounters returns counters starting at 1, per spec.
func NewCounters() *Counters {
	return &Counters{nextOrderID: 1, nextTradeID: 1, clock: 1}
}

// NextOrderID returns the next OrderId. It does not advance the clock.
func (c *Counters) NextOrderID() OrderID {
	id := c.nextOrderID
	c.nextOrderID++
	return id
}

// NextTradeID returns the next TradeId. It does not advance the clock.
func (c *Counters) NextTradeID() TradeID {
	id := c.nextTradeID
	c.nextTradeID++
	return id
}

// Tick advances and returns the next Timestamp.
func (c *Counters) Tick() Timestamp {
	ts := c.clock
	c.clock++
	return ts
}

// Snapshot returns the three raw counter values, mainly for tests that
// assert monotonicity and for replay equality checks.
func (c *Counters) Snapshot() (nextOrderID OrderID, nextTradeID TradeID, clock Timestamp) {
	return c.nextOrderID, c.nextTradeID, c.clock
}
