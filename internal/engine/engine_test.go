package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiputravu/ladderbook/internal/common"
	"github.com/saiputravu/ladderbook/internal/engine"
	"github.com/saiputravu/ladderbook/internal/matcher"
)

func newTestEngine(t *testing.T, symbols ...string) (*engine.Engine, context.Context) {
	t.Helper()
	e := engine.New(symbols, matcher.FIFO{}, 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("engine did not shut down")
		}
	})
	return e, context.Background()
}

func dec(t *testing.T, s string) common.Decimal {
	t.Helper()
	d, err := common.ParseDecimal(s)
	require.NoError(t, err)
	return d
}

func TestEngine_PlaceLimit_AssignsMonotonicIDs(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD")

	first, err := e.PlaceLimit(ctx, "BTCUSD", common.Bid, dec(t, "100"), dec(t, "1"))
	require.NoError(t, err)
	second, err := e.PlaceLimit(ctx, "BTCUSD", common.Bid, dec(t, "100"), dec(t, "1"))
	require.NoError(t, err)

	assert.Equal(t, common.OrderID(1), first.OrderID)
	assert.Equal(t, common.OrderID(2), second.OrderID)
}

func TestEngine_PlaceLimit_RejectsBeforeAssigningID(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD")

	res, err := e.PlaceLimit(ctx, "BTCUSD", common.Bid, common.Zero, dec(t, "1"))
	require.NoError(t, err)
	assert.Equal(t, common.StatusOrderDataInvalid, res.Status)

	ok, err := e.PlaceLimit(ctx, "BTCUSD", common.Bid, dec(t, "100"), dec(t, "1"))
	require.NoError(t, err)
	assert.Equal(t, common.OrderID(1), ok.OrderID)
}

func TestEngine_PlaceLimit_UnknownSymbol(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD")

	_, err := e.PlaceLimit(ctx, "ETHUSD", common.Bid, dec(t, "100"), dec(t, "1"))
	assert.ErrorIs(t, err, engine.ErrUnknownSymbol)
}

func TestEngine_CrossSymbolIsolation(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD", "ETHUSD")

	btc, err := e.PlaceLimit(ctx, "BTCUSD", common.Ask, dec(t, "100"), dec(t, "1"))
	require.NoError(t, err)

	bestAsk, ok, err := e.BestAsk(ctx, "ETHUSD")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, bestAsk.Equal(common.Zero))

	bestAsk, ok, err = e.BestAsk(ctx, "BTCUSD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(dec(t, "100")))
	assert.Equal(t, common.OrderID(1), btc.OrderID)
}

func TestEngine_CancelRoutesBySymbolIndex(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD", "ETHUSD")

	res, err := e.PlaceLimit(ctx, "ETHUSD", common.Bid, dec(t, "50"), dec(t, "2"))
	require.NoError(t, err)

	cancelRes, err := e.CancelLimit(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, common.CancelSuccess, cancelRes.Status)

	cancelRes, err = e.CancelLimit(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, common.CancelOrderIDNotFound, cancelRes.Status)
}

func TestEngine_CancelSuccessForgetsSymbolIndex(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD", "ETHUSD")

	res, err := e.PlaceLimit(ctx, "ETHUSD", common.Bid, dec(t, "50"), dec(t, "2"))
	require.NoError(t, err)

	cancelRes, err := e.CancelLimit(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, common.CancelSuccess, cancelRes.Status)

	// A second cancel of the same id must resolve as not-found from the
	// dispatcher's own index, without ever reaching a shard again.
	cancelRes, err = e.CancelLimit(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, common.CancelOrderIDNotFound, cancelRes.Status)
}

func TestEngine_CancelUnknownID(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD")

	res, err := e.CancelLimit(ctx, common.OrderID(999))
	require.NoError(t, err)
	assert.Equal(t, common.CancelOrderIDNotFound, res.Status)
}

func TestEngine_PlaceMarket_Sweeps(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD")

	_, err := e.PlaceLimit(ctx, "BTCUSD", common.Ask, dec(t, "100"), dec(t, "5"))
	require.NoError(t, err)

	res, err := e.PlaceMarket(ctx, "BTCUSD", common.Bid, dec(t, "10"))
	require.NoError(t, err)
	assert.Equal(t, common.StatusPartiallyFilled, res.Status)
	assert.True(t, res.Remaining.Equal(dec(t, "5")))

	contained, err := e.Contains(ctx, res.OrderID)
	require.NoError(t, err)
	assert.False(t, contained)
}

func TestEngine_PageAmountReflectsRestingOrders(t *testing.T) {
	e, ctx := newTestEngine(t, "BTCUSD")

	_, err := e.PlaceLimit(ctx, "BTCUSD", common.Bid, dec(t, "20"), dec(t, "20"))
	require.NoError(t, err)

	amount, err := e.PageAmount(ctx, "BTCUSD", common.Bid, dec(t, "20"))
	require.NoError(t, err)
	assert.True(t, amount.Equal(dec(t, "20")))
}
