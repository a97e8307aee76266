package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

func newTestContext(position float64) (*execContext, *orderBook, *AccountState) {
	book := &orderBook{}
	account := &AccountState{Leverage: 1, MarginMode: ports.MarginCross}
	return newExecContext(book, account, position, 1000), book, account
}

func TestExecContext_MonotonicIDs(t *testing.T) {
	ctx, book, _ := newTestContext(0)

	require.NoError(t, ctx.MarketBuy(1))
	require.NoError(t, ctx.LimitSell(2, 105))
	require.NoError(t, ctx.StopBuy(3, 110))

	orders := book.open()
	require.Len(t, orders, 3)
	assert.Equal(t, int64(1), orders[0].ID)
	assert.Equal(t, int64(2), orders[1].ID)
	assert.Equal(t, int64(3), orders[2].ID)
	assert.Equal(t, int64(1000), orders[0].Timestamp)
}

func TestExecContext_RejectsNonPositiveSize(t *testing.T) {
	ctx, book, _ := newTestContext(0)

	assert.ErrorIs(t, ctx.MarketBuy(0), domain.ErrInvalidOrder)
	assert.ErrorIs(t, ctx.MarketSell(-1), domain.ErrInvalidOrder)
	assert.ErrorIs(t, ctx.LimitBuy(0, 100), domain.ErrInvalidOrder)
	assert.Empty(t, book.open()) // nothing was queued
}

func TestExecContext_RejectsNonPositivePrices(t *testing.T) {
	ctx, _, _ := newTestContext(0)

	assert.ErrorIs(t, ctx.LimitBuy(1, 0), domain.ErrInvalidOrder)
	assert.ErrorIs(t, ctx.LimitSell(1, -5), domain.ErrInvalidOrder)
	assert.ErrorIs(t, ctx.StopSell(1, 0), domain.ErrInvalidOrder)
	assert.ErrorIs(t, ctx.StopLimitBuy(1, 0, 100), domain.ErrInvalidOrder)
	assert.ErrorIs(t, ctx.StopLimitSell(1, 100, 0), domain.ErrInvalidOrder)
}

func TestExecContext_ClosePositionFlattensLong(t *testing.T) {
	ctx, book, _ := newTestContext(7.5)
	require.NoError(t, ctx.ClosePosition())

	orders := book.open()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.Sell, orders[0].Side)
	assert.Equal(t, domain.Market, orders[0].Type)
	assert.Equal(t, 7.5, orders[0].Size)
}

func TestExecContext_ClosePositionFlattensShort(t *testing.T) {
	ctx, book, _ := newTestContext(-3)
	require.NoError(t, ctx.ClosePosition())

	orders := book.open()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.Buy, orders[0].Side)
	assert.Equal(t, 3.0, orders[0].Size)
}

func TestExecContext_CloseHelpersNoOpOnWrongSide(t *testing.T) {
	ctx, book, _ := newTestContext(0)
	require.NoError(t, ctx.ClosePosition()) // flat
	require.NoError(t, ctx.CloseLong())     // flat
	require.NoError(t, ctx.CloseShort())    // flat
	assert.Empty(t, book.open())

	ctx, book, _ = newTestContext(5)
	require.NoError(t, ctx.CloseShort()) // long position: no-op
	assert.Empty(t, book.open())

	ctx, book, _ = newTestContext(-5)
	require.NoError(t, ctx.CloseLong()) // short position: no-op
	assert.Empty(t, book.open())
}

func TestExecContext_CloseAmountReducesPosition(t *testing.T) {
	ctx, book, _ := newTestContext(10)
	require.NoError(t, ctx.CloseAmount(4))

	orders := book.open()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.Sell, orders[0].Side)
	assert.Equal(t, 4.0, orders[0].Size)

	assert.ErrorIs(t, ctx.CloseAmount(0), domain.ErrInvalidOrder)
}

func TestExecContext_CloseAmountClampsToPosition(t *testing.T) {
	// Oversized close of a long reduces to flat, never flips short.
	ctx, book, _ := newTestContext(3)
	require.NoError(t, ctx.CloseAmount(10))

	orders := book.open()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.Sell, orders[0].Side)
	assert.Equal(t, 3.0, orders[0].Size)

	// Same for a short.
	ctx, book, _ = newTestContext(-2)
	require.NoError(t, ctx.CloseAmount(10))

	orders = book.open()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.Buy, orders[0].Side)
	assert.Equal(t, 2.0, orders[0].Size)
}

func TestExecContext_CancelOrder(t *testing.T) {
	ctx, book, _ := newTestContext(0)
	require.NoError(t, ctx.LimitBuy(1, 90))
	require.NoError(t, ctx.LimitBuy(1, 91))

	require.NoError(t, ctx.CancelOrder(1))
	orders := book.open()
	assert.Equal(t, domain.StatusCancelled, orders[0].Status)
	assert.Equal(t, domain.StatusPending, orders[1].Status)

	// Cancelling an unknown or already-cancelled id is idempotent.
	require.NoError(t, ctx.CancelOrder(1))
	require.NoError(t, ctx.CancelOrder(999))
}

func TestExecContext_CancelAll(t *testing.T) {
	ctx, book, _ := newTestContext(0)
	require.NoError(t, ctx.LimitBuy(1, 90))
	require.NoError(t, ctx.StopSell(1, 80))

	ctx.CancelAll()
	for _, o := range book.open() {
		assert.Equal(t, domain.StatusCancelled, o.Status)
	}

	book.prune()
	assert.Empty(t, book.open())
}

func TestExecContext_AccountControls(t *testing.T) {
	ctx, _, account := newTestContext(0)

	require.NoError(t, ctx.SetLeverage(10))
	assert.Equal(t, 10, account.Leverage)
	assert.ErrorIs(t, ctx.SetLeverage(0), domain.ErrConfiguration)

	ctx.SetIsolatedMode()
	assert.Equal(t, ports.MarginIsolated, account.MarginMode)
	ctx.SetCrossMode()
	assert.Equal(t, ports.MarginCross, account.MarginMode)
}

func TestOrderBook_PruneKeepsOpenOrders(t *testing.T) {
	book := &orderBook{}
	filled := &domain.Order{Side: domain.Buy, Type: domain.Market, Size: 1, Remaining: 0}
	resting := &domain.Order{Side: domain.Buy, Type: domain.Limit, Price: 90, Size: 1, Remaining: 1}
	book.add(filled)
	book.add(resting)
	filled.Status = domain.StatusFilled

	book.prune()
	require.Len(t, book.open(), 1)
	assert.Equal(t, resting.ID, book.open()[0].ID)
}
