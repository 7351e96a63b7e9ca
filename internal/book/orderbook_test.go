package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchcore/internal/book"
)

func newRestingOrder(ob *book.OrderBook, side book.Side, price book.Price, qty book.Quantity) *book.Order {
	o := &book.Order{
		ID:        ob.Counters.NextOrderID(),
		Side:      side,
		Price:     price,
		Original:  qty,
		Remaining: qty,
		Submitted: ob.Counters.Tick(),
		TIF:       book.GTC,
		Status:    book.New,
	}
	ob.RestNew(o)
	return o
}

func TestCountersMonotonicAndDisjoint(t *testing.T) {
	c := book.NewCounters()
	o1 := c.NextOrderID()
	o2 := c.NextOrderID()
	tr1 := c.NextTradeID()
	ts1 := c.Tick()
	ts2 := c.Tick()

	assert.Less(t, o1, o2)
	assert.EqualValues(t, 1, tr1)
	assert.Less(t, ts1, ts2)
}

func TestRestNewRegistersInIndexAndLevel(t *testing.T) {
	ob := book.New()
	o := newRestingOrder(ob, book.Buy, 10000, 100)

	got, ok := ob.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, o.ID, got.ID)

	best, ok := ob.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 10000, best)
}

func TestCancelTombstonesAndIsO1Visible(t *testing.T) {
	ob := book.New()
	o := newRestingOrder(ob, book.Sell, 10500, 50)

	qty, err := ob.Cancel(o.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, qty)

	got, ok := ob.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, book.Cancelled, got.Status)
	assert.EqualValues(t, 50, got.Cancelled)
	assert.EqualValues(t, 0, got.Remaining)

	// Best ask is gone: the only resting level was fully tombstoned.
	_, ok = ob.BestAsk()
	assert.False(t, ok)
}

func TestCancelUnknownOrTerminalErrors(t *testing.T) {
	ob := book.New()
	_, err := ob.Cancel(999)
	assert.ErrorIs(t, err, book.ErrOrderNotFound)

	o := newRestingOrder(ob, book.Buy, 100, 10)
	_, err = ob.Cancel(o.ID)
	require.NoError(t, err)
	_, err = ob.Cancel(o.ID)
	assert.ErrorIs(t, err, book.ErrOrderNotActive)
}

func TestCompactPreservesFIFOOrderOfLiveRemainder(t *testing.T) {
	ob := book.New()
	a := newRestingOrder(ob, book.Buy, 100, 10)
	b := newRestingOrder(ob, book.Buy, 100, 20)
	c := newRestingOrder(ob, book.Buy, 100, 30)

	_, err := ob.Cancel(b.ID)
	require.NoError(t, err)

	ob.Compact()

	lvl, ok := ob.Bids.Level(100)
	require.True(t, ok)
	entries := lvl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, a.ID, entries[0].OrderID)
	assert.Equal(t, c.ID, entries[1].OrderID)
}

func TestClearOrderHistoryPrunesOnlyTerminal(t *testing.T) {
	ob := book.New()
	active := newRestingOrder(ob, book.Buy, 100, 10)
	terminal := newRestingOrder(ob, book.Buy, 200, 10)
	_, err := ob.Cancel(terminal.ID)
	require.NoError(t, err)

	n := ob.ClearOrderHistory()
	assert.Equal(t, 1, n)

	_, ok := ob.Get(active.ID)
	assert.True(t, ok)
	_, ok = ob.Get(terminal.ID)
	assert.False(t, ok)
}

func TestSideBookBestTracksHighestBidLowestAsk(t *testing.T) {
	ob := book.New()
	newRestingOrder(ob, book.Buy, 9900, 10)
	newRestingOrder(ob, book.Buy, 10000, 10)
	newRestingOrder(ob, book.Sell, 10200, 10)
	newRestingOrder(ob, book.Sell, 10100, 10)

	bb, _ := ob.BestBid()
	ba, _ := ob.BestAsk()
	assert.EqualValues(t, 10000, bb)
	assert.EqualValues(t, 10100, ba)
}
