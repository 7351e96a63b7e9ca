package stops

import (
	"sort"

	"github.com/abdoElHodaky/matchcore/internal/book"
)

// pendingSide holds one side's pending stops sorted so that the set
// triggered by any given price is always a contiguous suffix: ascending
// StopPrice for sells (price <= StopPrice triggers — the suffix holds every
// price at or above the current one), descending for buys (price >=
// StopPrice triggers — the suffix holds every price at or below it). Ties
// at the same StopPrice are broken by Submitted, earliest first, so
// simultaneous triggers are always processed in submission order.
type pendingSide struct {
	side   book.Side
	orders []*StopOrder
}

func newPendingSide(side book.Side) *pendingSide {
	return &pendingSide{side: side}
}

func (p *pendingSide) less(a, b *StopOrder) bool {
	if a.StopPrice != b.StopPrice {
		if p.side == book.Sell {
			return a.StopPrice < b.StopPrice
		}
		return a.StopPrice > b.StopPrice
	}
	return a.Submitted < b.Submitted
}

// insert keeps orders sorted by the side's convention. Pending sets are
// small relative to the resting book in practice, so a linear insertion
// point search is sufficient and keeps this allocation-light.
func (p *pendingSide) insert(o *StopOrder) {
	i := 0
	for i < len(p.orders) && p.less(p.orders[i], o) {
		i++
	}
	p.orders = append(p.orders, nil)
	copy(p.orders[i+1:], p.orders[i:])
	p.orders[i] = o
}

func (p *pendingSide) remove(id book.OrderID) (*StopOrder, bool) {
	for i, o := range p.orders {
		if o.ID == id {
			p.orders = append(p.orders[:i], p.orders[i+1:]...)
			return o, true
		}
	}
	return nil, false
}

// triggeredSuffix finds the first order satisfying the trigger condition at
// price and returns it along with everything after it (all of which, by
// construction of the sort order, also satisfy it), removing them from the
// pending set.
func (p *pendingSide) triggeredSuffix(price book.Price) []*StopOrder {
	idx := len(p.orders)
	for i, o := range p.orders {
		if o.TriggerCondition(price) {
			idx = i
			break
		}
	}
	if idx == len(p.orders) {
		return nil
	}
	triggered := p.orders[idx:]
	p.orders = p.orders[:idx]
	return triggered
}

// Book holds every pending stop order across both sides.
type Book struct {
	sides [2]*pendingSide
}

// New constructs an empty stop book.
func New() *Book {
	return &Book{sides: [2]*pendingSide{newPendingSide(book.Buy), newPendingSide(book.Sell)}}
}

func (b *Book) side(s book.Side) *pendingSide { return b.sides[s] }

// Submit registers a new pending stop. For a trailing stop, referencePrice
// seeds its initial watermark.
func (b *Book) Submit(o *StopOrder, referencePrice book.Price) {
	if o.Trail != nil {
		o.StopPrice = o.Trail.Init(o.Side, referencePrice)
	}
	o.Status = Pending
	b.side(o.Side).insert(o)
}

// Repend reinserts a stop that was just popped by CheckTriggers (e.g. when
// a cascade round overflows before converting it) back onto its side,
// without touching its trail: a trailing stop's watermark only ever moves
// in the favorable direction via Update, and must never be reset back to a
// reference price the way a genuinely new submission seeds it in Submit.
func (b *Book) Repend(o *StopOrder) {
	o.Status = Pending
	b.side(o.Side).insert(o)
}

// Cancel removes a pending stop by id, if present and still pending.
func (b *Book) Cancel(id book.OrderID, side book.Side) (*StopOrder, bool) {
	o, ok := b.side(side).remove(id)
	if !ok {
		return nil, false
	}
	o.Status = Cancelled
	return o, true
}

// CancelByID removes a pending stop by id without the caller needing to
// know which side it rests on, trying both. Used by the Command API's
// cancel path, which only has an OrderId to go on.
func (b *Book) CancelByID(id book.OrderID) (*StopOrder, bool) {
	if o, ok := b.Cancel(id, book.Buy); ok {
		return o, true
	}
	return b.Cancel(id, book.Sell)
}

// UpdateTrailing advances every pending trailing stop's watermark against
// the latest observed price, without triggering anything, and re-sorts any
// side whose trailing stops moved. The cascade driver calls it once per
// cascade round with that round's last trade price, before CheckTriggers;
// earlier trades within the same round are not fed to it.
func (b *Book) UpdateTrailing(price book.Price) {
	for _, side := range b.sides {
		moved := false
		for _, o := range side.orders {
			if o.Trail != nil {
				o.StopPrice = o.Trail.Update(o.Side, price)
				moved = true
			}
		}
		if moved {
			sort.SliceStable(side.orders, func(i, j int) bool { return side.less(side.orders[i], side.orders[j]) })
		}
	}
}

// CheckTriggers removes and returns every stop order across both sides
// whose trigger condition now holds against price, sells first then buys,
// each side in the deterministic order defined by pendingSide.
// Returned orders have Status set to Triggered.
func (b *Book) CheckTriggers(price book.Price) []*StopOrder {
	var out []*StopOrder
	for _, s := range []book.Side{book.Sell, book.Buy} {
		for _, o := range b.side(s).triggeredSuffix(price) {
			o.Status = Triggered
			out = append(out, o)
		}
	}
	return out
}

// PendingCount returns the number of stop orders still pending, across
// both sides.
func (b *Book) PendingCount() int {
	return len(b.sides[book.Buy].orders) + len(b.sides[book.Sell].orders)
}

// Get returns the pending stop order for id, if any.
func (b *Book) Get(id book.OrderID) (*StopOrder, bool) {
	for _, side := range b.sides {
		for _, o := range side.orders {
			if o.ID == id {
				return o, true
			}
		}
	}
	return nil, false
}
