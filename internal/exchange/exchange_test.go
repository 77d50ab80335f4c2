package exchange_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/validate"
)

func limitPrice(s string) *money.Money {
	p := mustMoney(s)
	return &p
}

// Scenario 1: limit cross at a better price (spec.md §8 #1).
func TestLimitCrossAtBetterPrice(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "seller", "0.00")
	createAccount(t, x, "buyer", "10000.00")
	giveHolding(t, x, "seller", "TECH", 1000, "0.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "seller", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit,
		Quantity: 100, Price: limitPrice("45.00"),
	})
	require.NoError(t, err)

	result, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit,
		Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.True(t, result.Trades[0].Price.Equal(mustMoney("45.00")))
	assert.Equal(t, int64(100), result.Trades[0].Quantity)
	assert.Equal(t, domain.Filled, result.Order.Status)

	tx, err := x.Store().Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	buyer, err := tx.GetAccount("buyer")
	require.NoError(t, err)
	assert.True(t, buyer.CashBalance.Equal(mustMoney("5500.00")), "buyer cash %s", buyer.CashBalance)

	seller, err := tx.GetAccount("seller")
	require.NoError(t, err)
	assert.True(t, seller.CashBalance.Equal(mustMoney("4500.00")), "seller cash %s", seller.CashBalance)

	sellerHolding, ok, err := tx.GetHolding("seller", "TECH")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(900), sellerHolding.Quantity)

	buyerHolding, ok, err := tx.GetHolding("buyer", "TECH")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), buyerHolding.Quantity)
}

// Scenario 2: price priority with a split fill across two resting sellers
// (spec.md §8 #2).
func TestPricePrioritySplitFill(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "s1", "0.00")
	createAccount(t, x, "s2", "0.00")
	createAccount(t, x, "buyer", "100000.00")
	giveHolding(t, x, "s1", "TECH", 30, "0.00")
	giveHolding(t, x, "s2", "TECH", 70, "0.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "s1", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 30, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)
	_, err = x.Submit(context.Background(), validate.Request{
		AccountID: "s2", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 70, Price: limitPrice("51.00"),
	})
	require.NoError(t, err)

	result, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 100, Price: limitPrice("52.00"),
	})
	require.NoError(t, err)

	require.Len(t, result.Trades, 2)
	assert.True(t, result.Trades[0].Price.Equal(mustMoney("50.00")))
	assert.Equal(t, int64(30), result.Trades[0].Quantity)
	assert.True(t, result.Trades[1].Price.Equal(mustMoney("51.00")))
	assert.Equal(t, int64(70), result.Trades[1].Quantity)
	assert.Equal(t, int64(0), result.Order.Remaining)
	assert.Equal(t, domain.Filled, result.Order.Status)
}

// Scenario 3: time priority between two equally-priced sellers (spec.md §8 #3).
func TestTimePriority(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "early", "0.00")
	createAccount(t, x, "late", "0.00")
	createAccount(t, x, "buyer", "100000.00")
	giveHolding(t, x, "early", "TECH", 100, "0.00")
	giveHolding(t, x, "late", "TECH", 100, "0.00")

	early, err := x.Submit(context.Background(), validate.Request{
		AccountID: "early", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)
	late, err := x.Submit(context.Background(), validate.Request{
		AccountID: "late", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)

	result, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, early.Order.ID, result.Trades[0].SellOrderID)

	tx, err := x.Store().Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()
	lateOrder, err := tx.GetOrder(late.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Open, lateOrder.Status)
}

// Scenario 4: self-trade prevention (spec.md §8 #4).
func TestSelfTradeSkip(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "a", "100000.00")
	giveHolding(t, x, "a", "TECH", 100, "0.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "a", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)

	result, err := x.Submit(context.Background(), validate.Request{
		AccountID: "a", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Trades)
	assert.Equal(t, domain.Open, result.Order.Status)
}

// Scenario 5: market buy exceeds book depth (spec.md §8 #5).
func TestMarketBuyExceedsBook(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "seller", "0.00")
	createAccount(t, x, "buyer", "100000.00")
	giveHolding(t, x, "seller", "TECH", 30, "0.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "seller", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 30, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)

	result, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Market, Quantity: 100,
	})
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, int64(30), result.Trades[0].Quantity)
	assert.Equal(t, int64(70), result.Order.Remaining)
	assert.Equal(t, domain.Cancelled, result.Order.Status)
}

// Scenario 6: market buy aborts on insufficient cash (spec.md §8 #6).
func TestMarketBuyOutOfCash(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "seller", "0.00")
	createAccount(t, x, "buyer", "100.00")
	giveHolding(t, x, "seller", "TECH", 100, "0.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "seller", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)

	result, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Market, Quantity: 100,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Trades)
	assert.Equal(t, domain.Cancelled, result.Order.Status)
}

// Scenario 7: cancellation races a fill, and a second cancel is rejected
// (spec.md §8 #7).
func TestCancelRacesFill(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "seller", "0.00")
	createAccount(t, x, "buyer", "100000.00")
	giveHolding(t, x, "seller", "TECH", 200, "0.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "seller", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)

	placed, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 100, Price: limitPrice("50.00"),
	})
	require.NoError(t, err)
	_ = placed

	// Set up a fresh partially-filled order to cancel.
	_, err = x.Submit(context.Background(), validate.Request{
		AccountID: "seller", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 100, Price: limitPrice("60.00"),
	})
	require.NoError(t, err)
	partial, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 140, Price: limitPrice("60.00"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(40), partial.Order.Remaining)
	require.Equal(t, domain.Partial, partial.Order.Status)

	cancelled, err := x.Cancel(context.Background(), "buyer", partial.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cancelled, cancelled.Status)
	assert.Equal(t, int64(40), cancelled.Remaining)

	_, err = x.Cancel(context.Background(), "buyer", partial.Order.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindIllegalState, apperr.KindOf(err))
}

// Scenario 8: free-cash reservation rejects an over-committing second order
// (spec.md §8 #8).
func TestFreeCashReservation(t *testing.T) {
	x := newTestExchange(t)
	createCompany(t, x, "TECH", 1000, 1000)
	createAccount(t, x, "buyer", "1000.00")

	_, err := x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 10, Price: limitPrice("100.00"),
	})
	require.NoError(t, err)

	_, err = x.Submit(context.Background(), validate.Request{
		AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 1, Price: limitPrice("100.00"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientResources, apperr.KindOf(err))
}
