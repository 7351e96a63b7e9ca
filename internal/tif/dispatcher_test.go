package tif_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/matching"
	"github.com/abdoElHodaky/matchcore/internal/tif"
)

func newDispatcher() (*book.OrderBook, *tif.Dispatcher) {
	ob := book.New()
	return ob, tif.New(ob, matching.New(nil), nil)
}

// S2 — partial fill rests the remainder as PartiallyFilled.
func TestSubmitLimitGTCPartialRests(t *testing.T) {
	ob, d := newDispatcher()
	sellRes := d.SubmitLimit(book.Sell, 10100, 100, book.GTC)
	require.Empty(t, sellRes.Trades)

	buyRes := d.SubmitLimit(book.Buy, 10100, 150, book.GTC)
	require.Len(t, buyRes.Trades, 1)
	assert.EqualValues(t, 100, buyRes.Trades[0].Quantity)
	assert.Equal(t, book.PartiallyFilled, buyRes.Order.Status)
	assert.EqualValues(t, 50, buyRes.Order.Remaining)

	bb, ok := ob.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 10100, bb)
}

// S3 — IOC never rests; any remainder is reported cancelled.
func TestSubmitLimitIOCDoesNotRest(t *testing.T) {
	ob, d := newDispatcher()
	d.SubmitLimit(book.Sell, 10000, 30, book.GTC)

	res := d.SubmitLimit(book.Buy, 10000, 100, book.IOC)
	require.Len(t, res.Trades, 1)
	assert.EqualValues(t, 30, res.Trades[0].Quantity)
	assert.EqualValues(t, 70, res.Cancelled)
	assert.Equal(t, book.Cancelled, res.Order.Status)

	_, ok := ob.BestBid()
	assert.False(t, ok)
}

// S4 — FOK that cannot fully fill rejects with zero trades and leaves the
// book unchanged.
func TestSubmitLimitFOKRejectsWhenUnfillable(t *testing.T) {
	ob, d := newDispatcher()
	d.SubmitLimit(book.Sell, 10000, 50, book.GTC)

	res := d.SubmitLimit(book.Buy, 10000, 100, book.FOK)
	assert.Empty(t, res.Trades)
	assert.Equal(t, book.Cancelled, res.Order.Status)
	assert.EqualValues(t, 100, res.Cancelled)

	askQty, ok := ob.Asks.Level(10000)
	require.True(t, ok)
	assert.EqualValues(t, 50, askQty.LiveQuantity())
}

func TestSubmitLimitFOKFillsFullyWhenPossible(t *testing.T) {
	_, d := newDispatcher()
	d.SubmitLimit(book.Sell, 10000, 100, book.GTC)

	res := d.SubmitLimit(book.Buy, 10000, 100, book.FOK)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, book.Filled, res.Order.Status)
	assert.EqualValues(t, 0, res.Cancelled)
}

func TestSubmitMarketIsIOCAtSentinelExtreme(t *testing.T) {
	_, d := newDispatcher()
	d.SubmitLimit(book.Sell, 10000, 10, book.GTC)

	res := d.SubmitMarket(book.Buy, 25)
	require.Len(t, res.Trades, 1)
	assert.EqualValues(t, 10, res.Trades[0].Quantity)
	assert.EqualValues(t, 15, res.Cancelled)
}

func TestSubmitLimitGTCFullyFilledIsFilledNotResting(t *testing.T) {
	ob, d := newDispatcher()
	d.SubmitLimit(book.Sell, 10000, 100, book.GTC)

	res := d.SubmitLimit(book.Buy, 10000, 100, book.GTC)
	assert.Equal(t, book.Filled, res.Order.Status)

	_, ok := ob.BestBid()
	assert.False(t, ok)
}
