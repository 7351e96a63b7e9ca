package engine

import (
	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/eventlog"
	"github.com/abdoElHodaky/matchcore/internal/stops"
)

// GetOrder returns the regular order record for id, if known (resting or
// terminal).
func (e *Engine) GetOrder(id book.OrderID) (*book.Order, bool) {
	return e.book.Get(id)
}

// GetStopOrder returns the pending stop order record for id, if still
// pending (triggered or cancelled stops are not retained — their identity
// continues under the regular order they were converted into ).
func (e *Engine) GetStopOrder(id book.OrderID) (*stops.StopOrder, bool) {
	return e.stops.Get(id)
}

// BestBid and BestAsk return the best resting price on each side, if any.
func (e *Engine) BestBid() (book.Price, bool) { return e.book.BestBid() }
func (e *Engine) BestAsk() (book.Price, bool) { return e.book.BestAsk() }

// BestBidAsk returns the current top of book and spread in one call.
func (e *Engine) BestBidAsk() book.L1 { return e.snap.L1() }

// Spread returns the best-ask-minus-best-bid distance, if both sides have
// resting liquidity.
func (e *Engine) Spread() (book.Price, bool) {
	l1 := e.snap.L1()
	return l1.Spread, l1.HasSpread
}

// Depth returns the top n price levels per side. n <= 0 returns the full
// (L3) book.
func (e *Engine) Depth(n int) book.Depth { return e.snap.Depth(n) }

// FullBook returns every resting price level on both sides.
func (e *Engine) FullBook() book.Depth { return e.snap.Depth(0) }

// Trades returns every trade executed since the engine was constructed or
// last had ClearTrades called, oldest first.
func (e *Engine) Trades() []*book.Trade {
	out := make([]*book.Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// LastTradePrice returns the most recent trade's price, if any trade has
// occurred.
func (e *Engine) LastTradePrice() (book.Price, bool) {
	return e.lastTradePrice, e.hasLastTrade
}

// PendingStopCount returns the number of stop orders still pending across
// both sides.
func (e *Engine) PendingStopCount() int {
	return e.stops.PendingCount()
}

// Imbalance and WeightedMid expose the book's pure analytics views.
func (e *Engine) Imbalance(n int) (float64, bool) { return e.snap.Imbalance(n) }
func (e *Engine) WeightedMid() (float64, bool)    { return e.snap.WeightedMid() }

// ClearTrades discards the in-memory trade history returned by Trades,
// without touching the book or the event log.
func (e *Engine) ClearTrades() {
	e.trades = nil
}

// ClearOrderHistory prunes terminal order records from the index.
// This command IS logged: replaying it reproduces the same pruned index.
func (e *Engine) ClearOrderHistory() int {
	r := eventlog.Record{Kind: eventlog.ClearOrderHistory}
	out := e.apply(r)
	e.log.Append(r)
	return out.ClearedCount
}

// Compact removes tombstoned entries from both sides of the book.
// This command IS logged for the same reason as ClearOrderHistory.
func (e *Engine) Compact() {
	r := eventlog.Record{Kind: eventlog.Compact}
	e.apply(r)
	e.log.Append(r)
	if e.metrics != nil {
		e.metrics.Compacted()
	}
}

// ClearEvents wipes the event log itself. It is the one operation that is
// never, itself, logged — logging "the log was cleared" into a log that no
// longer holds anything prior would misrepresent what replaying the
// resulting (empty) log reproduces.
func (e *Engine) ClearEvents() {
	e.log.Clear()
}
