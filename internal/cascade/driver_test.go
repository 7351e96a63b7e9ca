package cascade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/cascade"
	"github.com/abdoElHodaky/matchcore/internal/matching"
	"github.com/abdoElHodaky/matchcore/internal/stops"
	"github.com/abdoElHodaky/matchcore/internal/tif"
)

func newRig() (*book.OrderBook, *tif.Dispatcher, *stops.Book, *cascade.Driver) {
	ob := book.New()
	dsp := tif.New(ob, matching.New(nil), nil)
	sb := stops.New()
	return ob, dsp, sb, cascade.New(ob, sb, dsp, nil)
}

// S6 — stop cascade: a buy trading at 10500 triggers a pending buy stop at
// 10450, whose conversion trades against the next resting ask at 10600.
func TestRunDrivesOneLevelCascade(t *testing.T) {
	ob, dsp, sb, drv := newRig()
	dsp.SubmitLimit(book.Sell, 10500, 100, book.GTC)
	dsp.SubmitLimit(book.Sell, 10600, 100, book.GTC)

	pendingStop := &stops.StopOrder{ID: ob.Counters.NextOrderID(), Side: book.Buy, Kind: stops.Market, StopPrice: 10450, Quantity: 100, Submitted: ob.Counters.Tick()}
	sb.Submit(pendingStop, 0)

	res := dsp.SubmitLimit(book.Buy, 10500, 100, book.GTC)
	require.Len(t, res.Trades, 1)
	assert.EqualValues(t, 10500, res.Trades[0].Price)

	out := drv.Run(res.Trades[len(res.Trades)-1].Price)
	require.Len(t, out.Trades, 1)
	assert.EqualValues(t, 10600, out.Trades[0].Price)
	assert.False(t, out.Overflowed)
	assert.Equal(t, stops.Triggered, pendingStop.Status)
}

func TestRunConvergesWithNoTriggers(t *testing.T) {
	_, _, sb, drv := newRig()
	sb.Submit(&stops.StopOrder{ID: 1, Side: book.Buy, Kind: stops.Market, StopPrice: 50000, Quantity: 10}, 0)

	out := drv.Run(10000)
	assert.Empty(t, out.Trades)
	assert.False(t, out.Overflowed)
	assert.Equal(t, 1, sb.PendingCount())
}

func TestRunChainsMultipleTriggerRounds(t *testing.T) {
	ob, dsp, sb, drv := newRig()
	// Two ask levels, one for each of the two rounds that trigger a stop.
	dsp.SubmitLimit(book.Sell, 10600, 10, book.GTC)
	dsp.SubmitLimit(book.Sell, 10700, 10, book.GTC)

	stopA := &stops.StopOrder{ID: ob.Counters.NextOrderID(), Side: book.Buy, Kind: stops.Market, StopPrice: 10550, Quantity: 10, Submitted: ob.Counters.Tick()}
	stopB := &stops.StopOrder{ID: ob.Counters.NextOrderID(), Side: book.Buy, Kind: stops.Market, StopPrice: 10600, Quantity: 10, Submitted: ob.Counters.Tick()}
	sb.Submit(stopA, 0)
	sb.Submit(stopB, 0)

	out := drv.Run(10550) // first round triggers stopA only; its fill at 10600 then triggers stopB
	require.Len(t, out.Trades, 2)
	assert.EqualValues(t, 10600, out.Trades[0].Price)
	assert.EqualValues(t, 10700, out.Trades[1].Price)
	assert.Equal(t, 0, sb.PendingCount())
}

// A chain of exactly MaxDepth plain stops exhausts the depth bound; a
// trailing stop sitting just past the last of them is left triggered but
// unconverted, and must be returned to pending with its watermark intact
// rather than reseeded from the overflow price.
func TestRunRependsOverflowedTrailingStopWithoutResettingItsWatermark(t *testing.T) {
	ob, dsp, sb, drv := newRig()

	const rounds = cascade.MaxDepth
	const qty = 10
	base := book.Price(10000)

	// One ask level per round: stop[i]'s conversion always hits the next one.
	for i := 1; i <= rounds; i++ {
		dsp.SubmitLimit(book.Sell, base+book.Price(10*i), qty, book.GTC)
	}

	// rounds plain buy stops, chained ten points apart.
	for i := 0; i < rounds; i++ {
		so := &stops.StopOrder{
			ID:        ob.Counters.NextOrderID(),
			Side:      book.Buy,
			Kind:      stops.Market,
			StopPrice: base + book.Price(10*i),
			Quantity:  qty,
			Submitted: ob.Counters.Tick(),
		}
		sb.Submit(so, 0)
	}

	// A trailing buy stop seeded at exactly the chain's starting price: every
	// round price in the chain is >= base, so none of them is low enough to
	// move a buy stop's (favorably-lower) watermark, and it sits untouched at
	// base+1000 until the chain's 100th trade reaches it — exactly as the
	// depth bound is hit.
	trailing := &stops.StopOrder{
		ID:        ob.Counters.NextOrderID(),
		Side:      book.Buy,
		Kind:      stops.Market,
		Quantity:  qty,
		Trail:     stops.NewFixed(1000),
		Submitted: ob.Counters.Tick(),
	}
	sb.Submit(trailing, base)
	require.EqualValues(t, base+1000, trailing.StopPrice)

	out := drv.Run(base)

	require.True(t, out.Overflowed)
	require.Len(t, out.Trades, rounds)
	assert.EqualValues(t, base+1000, out.Trades[rounds-1].Price)

	assert.Equal(t, stops.Pending, trailing.Status)
	assert.EqualValues(t, base+1000, trailing.StopPrice)
	got, ok := sb.Get(trailing.ID)
	require.True(t, ok)
	assert.Same(t, trailing, got)
}
