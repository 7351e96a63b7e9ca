package stops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchcore/internal/book"
	"github.com/abdoElHodaky/matchcore/internal/stops"
)

func sell(id book.OrderID, stopPrice book.Price, submitted book.Timestamp) *stops.StopOrder {
	return &stops.StopOrder{ID: id, Side: book.Sell, Kind: stops.Market, StopPrice: stopPrice, Quantity: 10, Submitted: submitted}
}

func buy(id book.OrderID, stopPrice book.Price, submitted book.Timestamp) *stops.StopOrder {
	return &stops.StopOrder{ID: id, Side: book.Buy, Kind: stops.Market, StopPrice: stopPrice, Quantity: 10, Submitted: submitted}
}

func TestTriggerConditionSellAndBuy(t *testing.T) {
	s := sell(1, 10000, 1)
	assert.True(t, s.TriggerCondition(10000))
	assert.True(t, s.TriggerCondition(9900))
	assert.False(t, s.TriggerCondition(10100))

	b := buy(2, 10000, 1)
	assert.True(t, b.TriggerCondition(10000))
	assert.True(t, b.TriggerCondition(10100))
	assert.False(t, b.TriggerCondition(9900))
}

func TestCheckTriggersReturnsContiguousSuffixInDeterministicOrder(t *testing.T) {
	sb := stops.New()
	sb.Submit(sell(1, 10000, 1), 0)
	sb.Submit(sell(2, 9900, 2), 0)
	sb.Submit(sell(3, 10100, 3), 0)

	triggered := sb.CheckTriggers(9950)
	// Sell triggers when price <= StopPrice: 10000 and 10100 both qualify,
	// 9900 does not. Ascending-StopPrice sort puts the lowest-qualifying
	// price first.
	require.Len(t, triggered, 2)
	assert.EqualValues(t, 1, triggered[0].ID)
	assert.EqualValues(t, 3, triggered[1].ID)
	assert.Equal(t, 1, sb.PendingCount())
}

func TestCheckTriggersTieBreaksBySubmissionOrder(t *testing.T) {
	sb := stops.New()
	sb.Submit(buy(1, 10000, 5), 0)
	sb.Submit(buy(2, 10000, 2), 0)

	triggered := sb.CheckTriggers(10000)
	require.Len(t, triggered, 2)
	assert.EqualValues(t, 2, triggered[0].ID)
	assert.EqualValues(t, 1, triggered[1].ID)
}

func TestCheckTriggersSellsProcessedBeforeBuys(t *testing.T) {
	sb := stops.New()
	sb.Submit(buy(1, 10000, 1), 0)
	sb.Submit(sell(2, 10000, 2), 0)

	triggered := sb.CheckTriggers(10000)
	require.Len(t, triggered, 2)
	assert.EqualValues(t, 2, triggered[0].ID)
	assert.EqualValues(t, 1, triggered[1].ID)
}

func TestCancelByIDFindsRegardlessOfSide(t *testing.T) {
	sb := stops.New()
	sb.Submit(buy(1, 10000, 1), 0)
	sb.Submit(sell(2, 9000, 1), 0)

	so, ok := sb.CancelByID(2)
	require.True(t, ok)
	assert.Equal(t, stops.Cancelled, so.Status)
	assert.Equal(t, 1, sb.PendingCount())

	_, ok = sb.CancelByID(999)
	assert.False(t, ok)
}

func TestUpdateTrailingAdvancesWithoutTriggering(t *testing.T) {
	sb := stops.New()
	o := &stops.StopOrder{ID: 1, Side: book.Sell, Kind: stops.Market, Quantity: 10, Trail: stops.NewFixed(100)}
	sb.Submit(o, 10000) // watermark 10000, stop = 9900

	sb.UpdateTrailing(10200) // favorable for sell: watermark -> 10200, stop -> 10100
	assert.EqualValues(t, 10100, o.StopPrice)

	triggered := sb.CheckTriggers(10150)
	assert.Empty(t, triggered)

	sb.UpdateTrailing(9000) // unfavorable: watermark stays 10200
	assert.EqualValues(t, 10100, o.StopPrice)
}

func TestRependReinsertsWithoutReinitializingTrail(t *testing.T) {
	sb := stops.New()
	o := &stops.StopOrder{ID: 1, Side: book.Sell, Kind: stops.Market, Quantity: 10, Trail: stops.NewFixed(100)}
	sb.Submit(o, 10000) // watermark 10000, stop = 9900
	sb.UpdateTrailing(10500)
	require.EqualValues(t, 10400, o.StopPrice)

	popped := sb.CheckTriggers(10400)
	require.Len(t, popped, 1)
	assert.Equal(t, stops.Triggered, popped[0].Status)

	sb.Repend(popped[0])
	assert.Equal(t, stops.Pending, o.Status)
	// Repend must not re-seed the watermark from a reference price the way
	// Submit does — the already-advanced 10400 stays put.
	assert.EqualValues(t, 10400, o.StopPrice)
	assert.Equal(t, 1, sb.PendingCount())

	got, ok := sb.Get(1)
	require.True(t, ok)
	assert.Same(t, o, got)
}

func TestGetReturnsPendingStop(t *testing.T) {
	sb := stops.New()
	sb.Submit(sell(7, 10000, 1), 0)

	got, ok := sb.Get(7)
	require.True(t, ok)
	assert.EqualValues(t, 7, got.ID)

	_, ok = sb.Get(8)
	assert.False(t, ok)
}
