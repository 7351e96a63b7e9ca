// Package cascade implements the trigger->submit->trade->trigger driver:
// converting a triggered stop order into a real submission through
// the TIF dispatcher, observing the trade prices that submission produces,
// and feeding those prices back into the stop book to see whether they in
// turn trigger further stops. It is the only package that knows both
// internal/stops and internal/tif.
//
// Each round pops newly triggered stops and resubmits them through the same
// submit/match path a regular order takes, driven by an explicit,
// depth-bounded loop rather than recursion, so a long chain of triggers
// reports Overflowed instead of growing the call stack without bound.
package cascade

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/stops"
	"github.com/abdoElHodaky/matchcore/internal/tif"
)

// MaxDepth bounds the number of trigger rounds a single external submission
// may set off. It is a hard limit, not configurable: a cascade that would
// exceed it stops and reports Overflowed instead of looping forever or
// panicking.
const MaxDepth = 100

// TriggeredFill is one converted-and-submitted stop order and the outcome
// of its submission.
type TriggeredFill struct {
	Stop   *stops.StopOrder
	Result tif.Result
}

// Outcome is the full result of driving a cascade to quiescence (or to the
// depth bound).
type Outcome struct {
	Trades     []*book.Trade
	Triggered  []TriggeredFill
	Overflowed bool
}

// Driver ties a stop book to a TIF dispatcher over the same order book.
type Driver struct {
	ob     *book.OrderBook
	stops  *stops.Book
	dsp    *tif.Dispatcher
	logger *zap.Logger
}

// New constructs a cascade driver over ob's stop book and TIF dispatcher.
func New(ob *book.OrderBook, sb *stops.Book, dsp *tif.Dispatcher, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{ob: ob, stops: sb, dsp: dsp, logger: logger}
}

// Run drives the cascade starting from lastPrice: the price an external
// submission (or an earlier round of this same cascade) just traded at. It
// updates trailing watermarks, checks for newly triggered stops, submits
// each as a regular order via the TIF dispatcher, and repeats against the
// prices those submissions traded at, until no stop triggers or MaxDepth
// rounds have run.
func (d *Driver) Run(lastPrice book.Price) Outcome {
	var out Outcome
	price := lastPrice
	hasPrice := true

	for depth := 0; depth < MaxDepth; depth++ {
		if !hasPrice {
			break
		}
		d.stops.UpdateTrailing(price)
		triggered := d.stops.CheckTriggers(price)
		if len(triggered) == 0 {
			return out
		}

		hasPrice = false
		for _, so := range triggered {
			res := d.submit(so)
			out.Triggered = append(out.Triggered, TriggeredFill{Stop: so, Result: res})
			out.Trades = append(out.Trades, res.Trades...)
			if len(res.Trades) > 0 {
				price = res.Trades[len(res.Trades)-1].Price
				hasPrice = true
			}
		}
	}

	if hasPrice {
		// Reached here only by exhausting MaxDepth rounds while the last one
		// still produced a price worth checking — see if it would have kept
		// going.
		remaining := d.stops.CheckTriggers(price)
		if len(remaining) > 0 {
			for _, so := range remaining {
				d.stops.Repend(so) // return to pending, unconverted
			}
			out.Overflowed = true
		}
	}

	return out
}

// submit converts a triggered stop into a regular submission with a fresh
// OrderId/Timestamp and routes it through the TIF dispatcher.
func (d *Driver) submit(so *stops.StopOrder) tif.Result {
	price := so.StopPrice
	if so.Kind == stops.Limit {
		price = so.LimitPrice
	}

	var res tif.Result
	if so.Kind == stops.Market {
		res = d.dsp.SubmitMarket(so.Side, so.Quantity)
	} else {
		res = d.dsp.SubmitLimit(so.Side, price, so.Quantity, so.TIF)
	}

	d.logger.Info("stop triggered",
		zap.Uint64("stop_id", uint64(so.ID)),
		zap.Uint64("order_id", uint64(res.Order.ID)),
		zap.String("side", so.Side.String()))
	return res
}
