// Package stops implements the stop-order book: pending stop-market
// and stop-limit orders, plain or trailing, and the trigger check run
// against the latest trade price. It never submits anything to the order
// book itself — that conversion, and the cascade of further triggers it
// can set off, is internal/cascade's job. This package only answers
// "which pending stops does this price now trigger, in what order".
//
// Distinguishes plain from trailing and market from limit along independent
// axes, using the integer Price/Quantity types from package book throughout.
package stops

import "github.com/abdoElHodaky/matchcore/internal/book"

// Kind distinguishes a stop-market order (converts to a market order on
// trigger) from a stop-limit order (converts to a limit order at LimitPrice).
type Kind int

const (
	Market Kind = iota
	Limit
)

// Status is a stop order's lifecycle state.
type Status int

const (
	Pending Status = iota
	Triggered
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Triggered:
		return "triggered"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StopOrder is a resting stop, plain or trailing. It occupies the same
// OrderId sequence as regular orders, but is never itself matched —
// triggering converts it into a brand-new regular order with its own,
// later, OrderId and Timestamp.
type StopOrder struct {
	ID         book.OrderID
	Side       book.Side
	Kind       Kind
	StopPrice  book.Price
	LimitPrice book.Price // meaningful only when Kind == Limit
	Quantity   book.Quantity
	TIF        book.TimeInForce
	Status     Status
	Submitted  book.Timestamp

	// Trail is non-nil for a trailing stop; StopPrice is then derived from
	// Trail's watermark rather than fixed at submission time.
	Trail *TrailSpec
}

// TriggerCondition reports whether price crosses this stop's current
// StopPrice: a sell stop triggers on price falling to or below it (a
// protective exit below the market), a buy stop on price rising to or
// above it (a protective exit above the market, or a breakout entry).
func (o *StopOrder) TriggerCondition(price book.Price) bool {
	if o.Side == book.Sell {
		return price <= o.StopPrice
	}
	return price >= o.StopPrice
}
