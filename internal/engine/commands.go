package engine

import (
	"github.com/segmentio/ksuid"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/eventlog"
)

// SubmitLimit submits a limit order. Validation failures (zero quantity,
// non-positive price) are returned as an error and never appended to the
// event log.
func (e *Engine) SubmitLimit(side book.Side, price book.Price, qty book.Quantity, t book.TimeInForce) (SubmitResult, error) {
	r := eventlog.Record{Kind: eventlog.SubmitLimit, Side: side, Price: price, Quantity: qty, TIF: t}
	out := e.apply(r)
	if out.Err != nil {
		return SubmitResult{}, out.Err
	}
	e.log.Append(r)
	e.recordSubmission(t)
	return SubmitResult{RequestID: ksuid.New().String(), Order: out.Order, Trades: out.Trades, Overflowed: out.Overflowed}, nil
}

// SubmitMarket submits a market order (IOC at the sentinel extreme price).
func (e *Engine) SubmitMarket(side book.Side, qty book.Quantity) (SubmitResult, error) {
	r := eventlog.Record{Kind: eventlog.SubmitMarket, Side: side, Quantity: qty}
	out := e.apply(r)
	if out.Err != nil {
		return SubmitResult{}, out.Err
	}
	e.log.Append(r)
	e.recordSubmission(book.IOC)
	return SubmitResult{RequestID: ksuid.New().String(), Order: out.Order, Trades: out.Trades, Overflowed: out.Overflowed}, nil
}

// SubmitStopMarket submits a plain stop-market order.
func (e *Engine) SubmitStopMarket(side book.Side, stopPrice book.Price, qty book.Quantity, t book.TimeInForce) (StopSubmitResult, error) {
	return e.submitStop(eventlog.Record{Kind: eventlog.SubmitStopMarket, Side: side, Price: stopPrice, Quantity: qty, TIF: t})
}

// SubmitStopLimit submits a plain stop-limit order.
func (e *Engine) SubmitStopLimit(side book.Side, stopPrice, limitPrice book.Price, qty book.Quantity, t book.TimeInForce) (StopSubmitResult, error) {
	return e.submitStop(eventlog.Record{Kind: eventlog.SubmitStopLimit, Side: side, Price: stopPrice, LimitPrice: limitPrice, Quantity: qty, TIF: t})
}

// SubmitTrailingStopMarket submits a trailing stop-market order. Exactly
// one of the trail parameters is meaningful depending on kind: offset for
// Fixed, percentBps for Percentage, (atrPeriod, atrMultipleX1000) for Atr.
func (e *Engine) SubmitTrailingStopMarket(side book.Side, qty book.Quantity, t book.TimeInForce, trail TrailParams) (StopSubmitResult, error) {
	r := eventlog.Record{Kind: eventlog.SubmitTrailingStopMarket, Side: side, Quantity: qty, TIF: t, Trail: trail.toLog()}
	return e.submitStop(r)
}

// SubmitTrailingStopLimit submits a trailing stop-limit order. limitPrice
// is the absolute price of the limit order submitted when the stop
// triggers; it must be positive.
func (e *Engine) SubmitTrailingStopLimit(side book.Side, qty book.Quantity, t book.TimeInForce, trail TrailParams, limitPrice book.Price) (StopSubmitResult, error) {
	r := eventlog.Record{Kind: eventlog.SubmitTrailingStopLimit, Side: side, Quantity: qty, TIF: t, Trail: trail.toLog(), LimitPrice: limitPrice}
	return e.submitStop(r)
}

func (e *Engine) submitStop(r eventlog.Record) (StopSubmitResult, error) {
	out := e.apply(r)
	if out.Err != nil {
		return StopSubmitResult{}, out.Err
	}
	e.log.Append(r)
	e.recordSubmission(r.TIF)
	return StopSubmitResult{RequestID: ksuid.New().String(), Stop: out.Stop, Trades: out.Trades, Overflowed: out.Overflowed}, nil
}

// TrailParams is the public, dimension-named form of a trailing stop's
// parameters, translated to eventlog.TrailParams internally.
type TrailParams struct {
	Kind             TrailKind
	Offset           book.Price // Fixed
	PercentBps       int64      // Percentage
	AtrPeriod        int        // Atr
	AtrMultipleX1000 int64      // Atr
}

// TrailKind mirrors stops.TrailKind without exposing the stops package to
// callers of the Command API.
type TrailKind int

const (
	TrailFixed TrailKind = iota
	TrailPercentage
	TrailAtr
)

func (p TrailParams) toLog() *eventlog.TrailParams {
	return &eventlog.TrailParams{
		Kind:        int(p.Kind),
		Offset:      p.Offset,
		PercentBps:  p.PercentBps,
		AtrPeriod:   p.AtrPeriod,
		AtrMultiple: p.AtrMultipleX1000,
	}
}

// Cancel cancels an active regular order or a pending stop order by id.
func (e *Engine) Cancel(id book.OrderID) (CancelResult, error) {
	r := eventlog.Record{Kind: eventlog.Cancel, TargetID: id}
	out := e.apply(r)
	if out.Err != nil {
		return CancelResult{}, out.Err
	}
	e.log.Append(r)
	if e.metrics != nil {
		e.metrics.CancelProcessed()
	}
	return CancelResult{RequestID: ksuid.New().String(), OrderID: id, Cancelled: out.CancelledQty}, nil
}

// Modify atomically cancels and resubmits a resting order with a new price
// and quantity, losing its time priority. It fails without effect if the cancel leg
// fails.
func (e *Engine) Modify(id book.OrderID, newPrice book.Price, newQty book.Quantity) (ModifyResult, error) {
	if newQty == 0 {
		return ModifyResult{}, ErrZeroQuantity
	}
	if newPrice <= 0 {
		return ModifyResult{}, ErrNonPositivePrice
	}
	r := eventlog.Record{Kind: eventlog.Modify, TargetID: id, Price: newPrice, Quantity: newQty}
	out := e.apply(r)
	if out.Err != nil {
		return ModifyResult{}, out.Err
	}
	e.log.Append(r)
	return ModifyResult{
		OldOrderID:   id,
		SubmitResult: SubmitResult{RequestID: ksuid.New().String(), Order: out.Order, Trades: out.Trades, Overflowed: out.Overflowed},
	}, nil
}

func (e *Engine) recordSubmission(t book.TimeInForce) {
	if e.metrics != nil {
		e.metrics.OrderSubmitted(t.String())
	}
}

// TrySubmitLimit is SubmitLimit without error plumbing: ok is false iff the
// submission was rejected by validation.
func (e *Engine) TrySubmitLimit(side book.Side, price book.Price, qty book.Quantity, t book.TimeInForce) (SubmitResult, bool) {
	res, err := e.SubmitLimit(side, price, qty, t)
	return res, err == nil
}

// TrySubmitMarket is SubmitMarket without error plumbing.
func (e *Engine) TrySubmitMarket(side book.Side, qty book.Quantity) (SubmitResult, bool) {
	res, err := e.SubmitMarket(side, qty)
	return res, err == nil
}

// TrySubmitStopMarket is SubmitStopMarket without error plumbing.
func (e *Engine) TrySubmitStopMarket(side book.Side, stopPrice book.Price, qty book.Quantity, t book.TimeInForce) (StopSubmitResult, bool) {
	res, err := e.SubmitStopMarket(side, stopPrice, qty, t)
	return res, err == nil
}

// TrySubmitStopLimit is SubmitStopLimit without error plumbing.
func (e *Engine) TrySubmitStopLimit(side book.Side, stopPrice, limitPrice book.Price, qty book.Quantity, t book.TimeInForce) (StopSubmitResult, bool) {
	res, err := e.SubmitStopLimit(side, stopPrice, limitPrice, qty, t)
	return res, err == nil
}

// TrySubmitTrailingStopMarket is SubmitTrailingStopMarket without error
// plumbing.
func (e *Engine) TrySubmitTrailingStopMarket(side book.Side, qty book.Quantity, t book.TimeInForce, trail TrailParams) (StopSubmitResult, bool) {
	res, err := e.SubmitTrailingStopMarket(side, qty, t, trail)
	return res, err == nil
}

// TrySubmitTrailingStopLimit is SubmitTrailingStopLimit without error
// plumbing.
func (e *Engine) TrySubmitTrailingStopLimit(side book.Side, qty book.Quantity, t book.TimeInForce, trail TrailParams, limitPrice book.Price) (StopSubmitResult, bool) {
	res, err := e.SubmitTrailingStopLimit(side, qty, t, trail, limitPrice)
	return res, err == nil
}
