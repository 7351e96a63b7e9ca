// Package eventlog implements the append-only command log and the pure
// replay function that rebuilds an engine from it. There is exactly one
// aggregate (the book), events are never concurrently appended, and there
// is no snapshot/optimistic-concurrency machinery — replay always starts
// from genesis and runs every record in order.
//
// Records carry a closed set of command kinds rather than a freeform
// payload, so decoding never needs a type switch on arbitrary data.
package eventlog

import "github.com/abdoElHodaky/matchcore/internal/book"

// Kind identifies which command a Record carries.
type Kind int

const (
	SubmitLimit Kind = iota
	SubmitMarket
	SubmitStopMarket
	SubmitStopLimit
	SubmitTrailingStopMarket
	SubmitTrailingStopLimit
	Cancel
	Modify
	Compact
	ClearOrderHistory
)

func (k Kind) String() string {
	switch k {
	case SubmitLimit:
		return "submit_limit"
	case SubmitMarket:
		return "submit_market"
	case SubmitStopMarket:
		return "submit_stop_market"
	case SubmitStopLimit:
		return "submit_stop_limit"
	case SubmitTrailingStopMarket:
		return "submit_trailing_stop_market"
	case SubmitTrailingStopLimit:
		return "submit_trailing_stop_limit"
	case Cancel:
		return "cancel"
	case Modify:
		return "modify"
	case Compact:
		return "compact"
	case ClearOrderHistory:
		return "clear_order_history"
	default:
		return "unknown"
	}
}

// TrailParams carries a trailing stop's construction parameters in a form
// that survives the log (a *stops.TrailSpec carries unexported watermark
// state that must NOT be persisted — replay reconstructs it from these
// parameters instead "replay reproduces state, never replays
// a snapshot of it").
type TrailParams struct {
	Kind        int // stops.TrailKind, kept as int to avoid an import cycle
	Offset      book.Price
	PercentBps  int64
	AtrPeriod   int
	AtrMultiple int64
}

// Record is one logged command. Only the fields relevant to Kind are
// meaningful; the rest are zero. ExternalID is an opaque correlation
// identifier for operators tailing the log — it plays no role in replay and
// is never compared for equality against anything the engine computes.
type Record struct {
	ExternalID string
	Kind       Kind

	Side       book.Side
	Price      book.Price
	Quantity   book.Quantity
	TIF        book.TimeInForce
	LimitPrice book.Price // stop-limit and trailing stop-limit only
	Trail      *TrailParams

	TargetID book.OrderID // Cancel, Modify: the order being acted on
}
