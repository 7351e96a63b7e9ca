// Package matching implements the price-time matching algorithm: it
// crosses an incoming order against the opposite side of a book.OrderBook
// under price-time priority, producing trades and, implicitly, mutating
// the book in place (level drains, tombstone skips, quantity updates).
//
// Walks the front of the opposite side, level by level, skipping tombstoned
// entries, until either the incoming order is exhausted or the book stops
// crossing it.
package matching

import (
	"go.uber.org/zap"

	"github.com/abdoElHodaky/matchcore/internal/book"
)

// Engine runs the crossing algorithm against one book.OrderBook.
type Engine struct {
	logger *zap.Logger
}

// New returns a matching engine. A nil logger is replaced with a no-op
// logger so callers never need a nil check.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// crosses reports whether an incoming order at price p on side s crosses
// the opposite side's best price. Buy crosses when p >= ask; sell crosses
// when p <= bid.
func crosses(ob *book.OrderBook, s book.Side, p book.Price) (book.Price, bool) {
	opp := s.Opposite()
	best, ok := ob.Side(opp).Best()
	if !ok {
		return 0, false
	}
	if s == book.Buy {
		return best, p >= best
	}
	return best, p <= best
}

// Match drains the opposite side of ob against the incoming order,
// best-level-first and FIFO within a level, until either the incoming
// order's remaining quantity reaches zero or the opposite side no longer
// crosses the incoming limit price. It returns the trades produced, in
// execution order.
//
// incoming.Submitted must already be set (the TIF dispatcher mints it
// before calling Match "incoming order takes the next Timestamp
// on submission, before any matching").
func (e *Engine) Match(ob *book.OrderBook, incoming *book.Order) []*book.Trade {
	var trades []*book.Trade
	opp := incoming.Side.Opposite()

	for incoming.Remaining > 0 {
		bestPrice, crossed := crosses(ob, incoming.Side, incoming.Price)
		if !crossed {
			break
		}

		_, passiveID, passiveQty, ok := ob.FrontOfBest(opp)
		if !ok {
			break // opposite side drained entirely (tombstones only)
		}
		_ = passiveID

		tradeQty := incoming.Remaining
		if passiveQty < tradeQty {
			tradeQty = passiveQty
		}

		passive := ob.FillFront(opp, bestPrice, tradeQty)
		incoming.Remaining -= tradeQty
		incoming.Filled += tradeQty
		if incoming.Remaining == 0 {
			incoming.Status = book.Filled
		} else {
			incoming.Status = book.PartiallyFilled
		}

		trade := &book.Trade{
			ID:            ob.Counters.NextTradeID(),
			Price:         bestPrice,
			Quantity:      tradeQty,
			AggressorID:   incoming.ID,
			PassiveID:     passive.ID,
			AggressorSide: incoming.Side,
			Timestamp:     ob.Counters.Tick(),
		}
		trades = append(trades, trade)

		e.logger.Debug("trade executed",
			zap.Uint64("trade_id", uint64(trade.ID)),
			zap.Int64("price", int64(trade.Price)),
			zap.Uint64("quantity", uint64(trade.Quantity)),
			zap.Uint64("aggressor_id", uint64(trade.AggressorID)),
			zap.Uint64("passive_id", uint64(trade.PassiveID)))
	}

	return trades
}

// FillableQuantity sums non-tombstone live quantity across every opposite
// level that crosses limitPrice, best-to-worst, stopping once it has
// accumulated at least want (it never needs more than that to answer the
// FOK pre-check truthfully). Used by the TIF dispatcher's FOK simulation;
// never mutates the book.
func FillableQuantity(ob *book.OrderBook, side book.Side, limitPrice book.Price, want book.Quantity) book.Quantity {
	opp := side.Opposite()
	sb := ob.Side(opp)

	var total book.Quantity
	for _, lvl := range sortedCrossingLevels(sb, side, limitPrice) {
		total += lvl.LiveQuantity()
		if total >= want {
			break
		}
	}
	return total
}

// sortedCrossingLevels returns the opposite side's levels that cross
// limitPrice for an order on side `side`, ordered best-to-worst.
func sortedCrossingLevels(sb *book.SideBook, side book.Side, limitPrice book.Price) []*book.Level {
	var out []*book.Level
	for _, lvl := range sb.Levels() {
		if side == book.Buy {
			if lvl.Price <= limitPrice {
				out = append(out, lvl)
			}
		} else {
			if lvl.Price >= limitPrice {
				out = append(out, lvl)
			}
		}
	}
	sortLevelsBestFirst(out, side)
	return out
}

func sortLevelsBestFirst(levels []*book.Level, side book.Side) {
	// Small N in practice (price levels actually crossing an incoming
	// limit); insertion sort keeps this allocation-free and avoids
	// pulling in sort.Slice's reflection-based comparator for a hot path.
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && worse(levels[j-1], levels[j], side); j-- {
			levels[j-1], levels[j] = levels[j], levels[j-1]
		}
	}
}

func worse(a, b *book.Level, side book.Side) bool {
	if side == book.Buy {
		return a.Price > b.Price // ask side: ascending is best-first
	}
	return a.Price < b.Price // bid side: descending is best-first
}
