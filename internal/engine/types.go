package engine

import (
	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/stops"
)

// SubmitResult is the outcome of a regular (non-stop) submission.
type SubmitResult struct {
	// RequestID is an opaque external correlation id for this one Command
	// API call, independent of the deterministic OrderId/TradeId/Timestamp
	// sequences — two calls with identical arguments get different
	// RequestIDs, and replay never reproduces or checks them.
	RequestID string
	Order     *book.Order
	Trades    []*book.Trade
	// Overflowed reports whether the trades this submission set off through
	// the stop cascade hit the cascade depth bound; the submission
	// itself still fully applied.
	Overflowed bool
}

// StopSubmitResult is the outcome of submitting a stop order: the resting
// (or, if its trigger condition already held, immediately-triggered) stop,
// plus any trades its immediate triggering produced.
type StopSubmitResult struct {
	RequestID  string
	Stop       *stops.StopOrder
	Trades     []*book.Trade
	Overflowed bool
}

// CancelResult is the outcome of cancelling a regular order or a pending
// stop order. Cancelled is zero when the target was a stop order.
type CancelResult struct {
	RequestID string
	OrderID   book.OrderID
	Cancelled book.Quantity
}

// ModifyResult is the outcome of an atomic cancel-and-resubmit.
type ModifyResult struct {
	OldOrderID book.OrderID
	SubmitResult
}
