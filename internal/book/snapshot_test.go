package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchcore/internal/book"
)

func TestSnapshotL1AndSpread(t *testing.T) {
	ob := book.New()
	snap := book.NewSnapshotter(ob)

	l1 := snap.L1()
	assert.False(t, l1.HasBid)
	assert.False(t, l1.HasAsk)

	newRestingOrder(ob, book.Buy, 10000, 10)
	newRestingOrder(ob, book.Sell, 10100, 10)

	l1 = snap.L1()
	require.True(t, l1.HasBid)
	require.True(t, l1.HasAsk)
	assert.EqualValues(t, 10000, l1.BestBid)
	assert.EqualValues(t, 10100, l1.BestAsk)
	assert.EqualValues(t, 100, l1.Spread)
}

func TestDepthOrderingAndTopN(t *testing.T) {
	ob := book.New()
	snap := book.NewSnapshotter(ob)

	newRestingOrder(ob, book.Buy, 9900, 10)
	newRestingOrder(ob, book.Buy, 10000, 10)
	newRestingOrder(ob, book.Buy, 9800, 10)
	newRestingOrder(ob, book.Sell, 10300, 10)
	newRestingOrder(ob, book.Sell, 10100, 10)

	d := snap.Depth(2)
	require.Len(t, d.Bids, 2)
	assert.EqualValues(t, 10000, d.Bids[0].Price)
	assert.EqualValues(t, 9900, d.Bids[1].Price)

	full := snap.Depth(0)
	require.Len(t, full.Asks, 2)
	assert.EqualValues(t, 10100, full.Asks[0].Price)
	assert.EqualValues(t, 10300, full.Asks[1].Price)
}

func TestDepthCacheInvalidatesOnMutation(t *testing.T) {
	ob := book.New()
	snap := book.NewSnapshotter(ob)

	newRestingOrder(ob, book.Buy, 10000, 10)
	first := snap.Depth(0)
	require.Len(t, first.Bids, 1)
	assert.EqualValues(t, 10, first.Bids[0].Quantity)

	newRestingOrder(ob, book.Buy, 10000, 5)
	second := snap.Depth(0)
	require.Len(t, second.Bids, 1)
	assert.EqualValues(t, 15, second.Bids[0].Quantity)
}

func TestImbalanceUndefinedWhenEmpty(t *testing.T) {
	ob := book.New()
	snap := book.NewSnapshotter(ob)

	_, ok := snap.Imbalance(0)
	assert.False(t, ok)

	newRestingOrder(ob, book.Buy, 10000, 30)
	newRestingOrder(ob, book.Sell, 10100, 10)

	imb, ok := snap.Imbalance(0)
	require.True(t, ok)
	assert.InDelta(t, 0.5, imb, 1e-9)
}

func TestWeightedMid(t *testing.T) {
	ob := book.New()
	snap := book.NewSnapshotter(ob)

	newRestingOrder(ob, book.Buy, 10000, 10)
	newRestingOrder(ob, book.Sell, 10200, 30)

	mid, ok := snap.WeightedMid()
	require.True(t, ok)
	// (10000*30 + 10200*10) / 40 = 10050
	assert.InDelta(t, 10050, mid, 1e-9)
}
