// Package engine is the Command API facade: the single entry point
// external callers use to submit, cancel and modify orders, query the
// book, and drive deterministic replay. It composes every other internal
// package (book, matching, tif, stops, cascade, eventlog, metrics) and is
// the only package that knows all of them.
//
// One Engine owns exactly one book.OrderBook: replay determinism is
// defined over a single book's event log, not a venue-wide one, so there
// is no multi-symbol routing here.
package engine

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/cascade"
	"github.com/abdoElHodaky/matchcore/internal/eventlog"
	"github.com/abdoElHodaky/matchcore/internal/matching"
	"github.com/abdoElHodaky/matchcore/internal/metrics"
	"github.com/abdoElHodaky/matchcore/internal/stops"
	"github.com/abdoElHodaky/matchcore/internal/tif"
)

// Engine is one order book and everything that operates on it: matching,
// time-in-force handling, stop triggering and cascading, and the event log
// that makes its history replayable.
type Engine struct {
	book       *book.OrderBook
	matcher    *matching.Engine
	dispatcher *tif.Dispatcher
	stops      *stops.Book
	cascade    *cascade.Driver
	snap       *book.Snapshotter
	log        *eventlog.Log

	metrics *metrics.Recorder
	logger  *zap.Logger

	trades         []*book.Trade
	lastTradePrice book.Price
	hasLastTrade   bool
}

// New constructs an empty engine. A nil logger defaults to a no-op logger;
// a nil metrics recorder is valid and every metric call on it is a no-op.
func New(logger *zap.Logger, rec *metrics.Recorder) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	ob := book.New()
	matcher := matching.New(logger)
	dsp := tif.New(ob, matcher, logger)
	sb := stops.New()

	e := &Engine{
		book:       ob,
		matcher:    matcher,
		dispatcher: dsp,
		stops:      sb,
		cascade:    cascade.New(ob, sb, dsp, logger),
		snap:       book.NewSnapshotter(ob),
		log:        eventlog.New(),
		metrics:    rec,
		logger:     logger,
	}
	return e
}

// applyOutcome is the internal result of dispatching one logged command,
// shared by both the live Submit*/Cancel/Modify paths and Replay so the two
// can never diverge in what a given record does.
type applyOutcome struct {
	Order        *book.Order
	Stop         *stops.StopOrder
	Trades       []*book.Trade
	CancelledQty book.Quantity
	ClearedCount int
	Overflowed   bool
	Err          error
}

// apply dispatches a single record against current state. It never logs —
// callers decide whether and how to append to the log, which is what lets
// a rejected (invalid) command be evaluated without being recorded.
func (e *Engine) apply(r eventlog.Record) applyOutcome {
	switch r.Kind {
	case eventlog.SubmitLimit:
		return e.applySubmitLimit(r)
	case eventlog.SubmitMarket:
		return e.applySubmitMarket(r)
	case eventlog.SubmitStopMarket, eventlog.SubmitStopLimit,
		eventlog.SubmitTrailingStopMarket, eventlog.SubmitTrailingStopLimit:
		return e.applySubmitStop(r)
	case eventlog.Cancel:
		return e.applyCancel(r)
	case eventlog.Modify:
		return e.applyModify(r)
	case eventlog.Compact:
		e.book.Compact()
		return applyOutcome{}
	case eventlog.ClearOrderHistory:
		return applyOutcome{ClearedCount: e.book.ClearOrderHistory()}
	default:
		return applyOutcome{Err: ErrUnknownCommand}
	}
}

func (e *Engine) applySubmitLimit(r eventlog.Record) applyOutcome {
	if r.Quantity == 0 {
		return applyOutcome{Err: ErrZeroQuantity}
	}
	if r.Price <= 0 {
		return applyOutcome{Err: ErrNonPositivePrice}
	}
	res := e.dispatcher.SubmitLimit(r.Side, r.Price, r.Quantity, r.TIF)
	return e.finishSubmission(res.Order, res.Trades)
}

func (e *Engine) applySubmitMarket(r eventlog.Record) applyOutcome {
	if r.Quantity == 0 {
		return applyOutcome{Err: ErrZeroQuantity}
	}
	res := e.dispatcher.SubmitMarket(r.Side, r.Quantity)
	return e.finishSubmission(res.Order, res.Trades)
}

func (e *Engine) applySubmitStop(r eventlog.Record) applyOutcome {
	if r.Quantity == 0 {
		return applyOutcome{Err: ErrZeroQuantity}
	}
	kind := stops.Market
	limitPrice := book.Price(0)
	if r.Kind == eventlog.SubmitStopLimit || r.Kind == eventlog.SubmitTrailingStopLimit {
		kind = stops.Limit
		if r.LimitPrice <= 0 {
			return applyOutcome{Err: ErrNonPositivePrice}
		}
		limitPrice = r.LimitPrice
	}

	so := &stops.StopOrder{
		ID:         e.book.Counters.NextOrderID(),
		Side:       r.Side,
		Kind:       kind,
		StopPrice:  r.Price,
		LimitPrice: limitPrice,
		Quantity:   r.Quantity,
		TIF:        r.TIF,
		Submitted:  e.book.Counters.Tick(),
	}
	if r.Trail != nil {
		so.Trail = trailSpecFromParams(r.Trail)
	}

	e.stops.Submit(so, e.referencePrice())

	var out applyOutcome
	if e.hasLastTrade {
		out = e.runCascade(e.lastTradePrice)
	}
	out.Stop = so
	return out
}

func (e *Engine) applyCancel(r eventlog.Record) applyOutcome {
	qty, err := e.book.Cancel(r.TargetID)
	if err == nil {
		return applyOutcome{CancelledQty: qty}
	}
	if book.IsCancelError(err) {
		if so, ok := e.stops.CancelByID(r.TargetID); ok {
			return applyOutcome{Stop: so}
		}
	}
	return applyOutcome{Err: err}
}

func (e *Engine) applyModify(r eventlog.Record) applyOutcome {
	old, ok := e.book.Get(r.TargetID)
	if !ok {
		return applyOutcome{Err: ErrOrderNotFound}
	}
	if !old.Status.IsActive() {
		return applyOutcome{Err: ErrOrderNotActive}
	}
	side, t := old.Side, old.TIF

	if _, err := e.book.Cancel(r.TargetID); err != nil {
		return applyOutcome{Err: err}
	}

	res := e.dispatcher.SubmitLimit(side, r.Price, r.Quantity, t)
	out := e.finishSubmission(res.Order, res.Trades)
	return out
}

// finishSubmission records any trades a regular submission produced and
// drives the stop cascade from the last of them: a submission that trades
// may itself trigger stops, whose own submissions may trade and trigger
// further stops.
func (e *Engine) finishSubmission(order *book.Order, trades []*book.Trade) applyOutcome {
	e.recordTrades(trades)
	out := applyOutcome{Order: order, Trades: trades}

	if len(trades) > 0 {
		cascadeOut := e.runCascade(trades[len(trades)-1].Price)
		out.Trades = append(out.Trades, cascadeOut.Trades...)
		out.Overflowed = cascadeOut.Overflowed
	}
	return out
}

func (e *Engine) runCascade(price book.Price) applyOutcome {
	outcome := e.cascade.Run(price)
	e.recordTrades(outcome.Trades)
	if e.metrics != nil {
		e.metrics.CascadeDepth(len(outcome.Triggered))
	}
	return applyOutcome{Trades: outcome.Trades, Overflowed: outcome.Overflowed}
}

func (e *Engine) recordTrades(trades []*book.Trade) {
	if len(trades) == 0 {
		return
	}
	e.trades = append(e.trades, trades...)
	e.lastTradePrice = trades[len(trades)-1].Price
	e.hasLastTrade = true
	if e.metrics != nil {
		e.metrics.TradesExecuted(len(trades))
	}
}

// referencePrice picks the value a newly-submitted trailing stop should
// seed its watermark from: the last trade price if one exists, else the
// midpoint between best bid and best ask, else the zero price. It is only ever used to seed
// a watermark — the cascade's trigger check runs strictly off actual trade
// prices, never this synthetic fallback, so a stop can never fire before a
// trade has occurred.
func (e *Engine) referencePrice() book.Price {
	if e.hasLastTrade {
		return e.lastTradePrice
	}
	l1 := e.snap.L1()
	if l1.HasBid && l1.HasAsk {
		return l1.BestBid + (l1.BestAsk-l1.BestBid)/2
	}
	return 0
}

func trailSpecFromParams(p *eventlog.TrailParams) *stops.TrailSpec {
	switch stops.TrailKind(p.Kind) {
	case stops.Percentage:
		return stops.NewPercentage(p.PercentBps)
	case stops.Atr:
		return stops.NewAtr(p.AtrPeriod, p.AtrMultiple)
	default:
		return stops.NewFixed(p.Offset)
	}
}
