package stops

import "github.com/abdoElHodaky/matchcore/internal/book"

// TrailKind selects how a trailing stop's offset from the watermark is
// computed.
type TrailKind int

const (
	Fixed TrailKind = iota
	Percentage
	Atr
)

// TrailSpec tracks a trailing stop's watermark (the best price seen since
// submission, in the direction favorable to the position being protected)
// and derives the live StopPrice from it. The watermark only ever moves in
// the favorable direction — it never retreats when the market reverses,
// "a trailing stop's distance only ever tightens toward the
// market, never widens".
type TrailSpec struct {
	Kind TrailKind

	Offset      book.Price // Fixed
	PercentBps  int64      // Percentage, in basis points of the watermark
	AtrMultiple int64      // Atr, scaled by 1000 (fixed-point multiplier)

	watermark book.Price
	atr       *atrRing
}

// NewFixed returns a fixed-offset trailing stop spec.
func NewFixed(offset book.Price) *TrailSpec {
	return &TrailSpec{Kind: Fixed, Offset: offset}
}

// NewPercentage returns a trailing stop spec whose offset is bps/10000 of
// the watermark price, recomputed on every watermark update.
func NewPercentage(bps int64) *TrailSpec {
	return &TrailSpec{Kind: Percentage, PercentBps: bps}
}

// NewAtr returns a trailing stop spec whose offset is an ATR multiple,
// computed over period tick-to-tick absolute price deltas. multipleX1000 is
// the multiplier scaled by 1000 so it can be expressed as an integer (e.g.
// 2.5x is 2500). The ATR contributes zero offset until period deltas have
// been observed: before then the stop trails at zero distance.
func NewAtr(period int, multipleX1000 int64) *TrailSpec {
	return &TrailSpec{Kind: Atr, AtrMultiple: multipleX1000, atr: newATRRing(period)}
}

// Init seeds the watermark at the order's submission-time reference price
// (the trigger price passed at submission, e.g. the last trade price) and
// derives the initial StopPrice.
func (t *TrailSpec) Init(side book.Side, referencePrice book.Price) book.Price {
	t.watermark = referencePrice
	return t.stopPrice(side)
}

// Update folds in a new observed price: it advances the watermark if the
// new price is more favorable than the current one, feeds the ATR ring if
// applicable, and returns the recomputed StopPrice.
func (t *TrailSpec) Update(side book.Side, price book.Price) book.Price {
	if t.atr != nil {
		t.atr.push(price)
	}
	if side == book.Sell {
		if price > t.watermark {
			t.watermark = price
		}
	} else {
		if price < t.watermark {
			t.watermark = price
		}
	}
	return t.stopPrice(side)
}

// stopPrice derives the live stop price from the watermark and offset. A
// sell trailing stop sits offset below the watermark (protecting a long);
// a buy trailing stop sits offset above it (protecting a short).
func (t *TrailSpec) stopPrice(side book.Side) book.Price {
	offset := t.offset()
	if side == book.Sell {
		return t.watermark - offset
	}
	return t.watermark + offset
}

func (t *TrailSpec) offset() book.Price {
	switch t.Kind {
	case Fixed:
		return t.Offset
	case Percentage:
		return book.Price(int64(t.watermark) * t.PercentBps / 10000)
	case Atr:
		if t.atr == nil || !t.atr.full() {
			return 0
		}
		return book.Price(t.atr.value() * t.AtrMultiple / 1000)
	default:
		return 0
	}
}

// atrRing is a fixed-capacity ring buffer of absolute tick-to-tick price
// deltas with a running sum, so the average (the ATR proxy) is O(1) per
// update instead of re-summing the window every tick.
type atrRing struct {
	deltas   []int64
	pos      int
	count    int
	sum      int64
	lastSeen book.Price
	hasLast  bool
}

func newATRRing(period int) *atrRing {
	if period < 1 {
		period = 1
	}
	return &atrRing{deltas: make([]int64, period)}
}

func (r *atrRing) push(price book.Price) {
	if !r.hasLast {
		r.lastSeen = price
		r.hasLast = true
		return
	}
	delta := int64(price) - int64(r.lastSeen)
	if delta < 0 {
		delta = -delta
	}
	r.lastSeen = price

	if r.count < len(r.deltas) {
		r.deltas[r.pos] = delta
		r.sum += delta
		r.count++
	} else {
		r.sum -= r.deltas[r.pos]
		r.deltas[r.pos] = delta
		r.sum += delta
	}
	r.pos = (r.pos + 1) % len(r.deltas)
}

func (r *atrRing) full() bool { return r.count == len(r.deltas) }

func (r *atrRing) value() int64 {
	if r.count == 0 {
		return 0
	}
	return r.sum / int64(r.count)
}
