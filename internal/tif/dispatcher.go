// Package tif implements the time-in-force dispatcher: it is the
// entry point regular (non-stop) submissions go through, responsible for
// minting identifiers, running the matching engine, and applying GTC/IOC/
// FOK resting rules including the FOK pre-check simulation.
//
// Splits cleanly into two questions: whether the order type is a market
// order, and whether any remainder rests once matching stops — the second
// answered by an explicit per-time-in-force resting policy rather than a
// single type switch.
package tif

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/matching"
)

// Dispatcher routes limit/market submissions to the matching engine and
// applies the resting policy for the order's time-in-force.
type Dispatcher struct {
	book    *book.OrderBook
	matcher *matching.Engine
	logger  *zap.Logger
}

// New constructs a dispatcher over ob using matcher for crossing.
func New(ob *book.OrderBook, matcher *matching.Engine, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{book: ob, matcher: matcher, logger: logger}
}

// Result is the outcome of one submission: the accepted order (always
// non-nil on success), the trades it produced, and the quantity that ended
// up cancelled (IOC/FOK remainder, or FOK's entire requested quantity on
// rejection).
type Result struct {
	Order     *book.Order
	Trades    []*book.Trade
	Cancelled book.Quantity
}

// SubmitLimit accepts a limit order at price for qty on side, per its TIF.
// Validation (zero quantity, non-positive price) must already have been
// performed by the caller — this function only implements the
// routing/resting policy once a submission is known-valid.
func (d *Dispatcher) SubmitLimit(side book.Side, price book.Price, qty book.Quantity, t book.TimeInForce) Result {
	if t == book.FOK {
		fillable := matching.FillableQuantity(d.book, side, price, qty)
		if fillable < qty {
			return d.rejectFOK(side, price, qty, t)
		}
	}

	o := d.newOrder(side, price, qty, t)
	trades := d.matcher.Match(d.book, o)
	d.settle(o, t)
	return Result{Order: o, Trades: trades, Cancelled: o.Cancelled}
}

// SubmitMarket accepts a market order: IOC semantics at the sentinel
// extreme price.
func (d *Dispatcher) SubmitMarket(side book.Side, qty book.Quantity) Result {
	price := book.MaxPrice
	if side == book.Sell {
		price = book.MinPrice
	}
	return d.SubmitLimit(side, price, qty, book.IOC)
}

// rejectFOK issues an OrderId/Timestamp for a fill-or-kill submission that
// cannot be fully satisfied, records it as immediately cancelled, and
// leaves the book untouched — no trades, no resting entry.
func (d *Dispatcher) rejectFOK(side book.Side, price book.Price, qty book.Quantity, t book.TimeInForce) Result {
	o := &book.Order{
		ID:        d.book.Counters.NextOrderID(),
		Side:      side,
		Price:     price,
		Original:  qty,
		Remaining: 0,
		Filled:    0,
		Cancelled: qty,
		Submitted: d.book.Counters.Tick(),
		TIF:       t,
		Status:    book.Cancelled,
	}
	d.book.TrackTerminal(o)
	d.logger.Info("FOK rejected",
		zap.Uint64("order_id", uint64(o.ID)),
		zap.Uint64("requested", uint64(qty)))
	return Result{Order: o, Cancelled: qty}
}

func (d *Dispatcher) newOrder(side book.Side, price book.Price, qty book.Quantity, t book.TimeInForce) *book.Order {
	return &book.Order{
		ID:        d.book.Counters.NextOrderID(),
		Side:      side,
		Price:     price,
		Original:  qty,
		Remaining: qty,
		Filled:    0,
		Submitted: d.book.Counters.Tick(),
		TIF:       t,
		Status:    book.New,
	}
}

// settle applies the post-match resting policy for t: GTC rests any
// remainder, IOC/FOK cancel it .
func (d *Dispatcher) settle(o *book.Order, t book.TimeInForce) {
	if o.Remaining == 0 {
		o.Status = book.Filled
		d.book.TrackTerminal(o)
		return
	}

	switch t {
	case book.GTC:
		if o.Filled > 0 {
			o.Status = book.PartiallyFilled
		} else {
			o.Status = book.New
		}
		d.book.RestNew(o)
	case book.IOC, book.FOK:
		o.Cancelled = o.Remaining
		o.Remaining = 0
		o.Status = book.Cancelled
		d.book.TrackTerminal(o)
	}
}
