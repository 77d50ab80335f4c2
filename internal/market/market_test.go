package market_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/domain"
	"fenrir/internal/market"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustMoney(t *testing.T, s string) money.Money {
	m, err := money.FromString(s)
	require.NoError(t, err)
	return m
}

// Scenario 9: depth aggregation groups by price level (spec.md §8 #9).
func TestDepthAggregation(t *testing.T) {
	s := newStore(t)
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.CreateCompany(domain.Company{Ticker: "TECH", Name: "Tech", TotalShares: 1000, FloatShares: 1000}))
	require.NoError(t, tx.CreateAccount(domain.Account{ID: "b1", APIKeyDigest: "d1", CreatedAt: time.Now()}))

	price100 := mustMoney(t, "100.00")
	price99_50 := mustMoney(t, "99.50")

	insertOrder := func(qty int64, price money.Money) {
		require.NoError(t, tx.InsertOrder(domain.Order{
			ID: "o-" + price.String() + "-" + time.Now().Format("150405.000000000"),
			AccountID: "b1", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit,
			Price: &price, Quantity: qty, Remaining: qty, Status: domain.Open, SubmittedAt: time.Now(),
		}))
	}
	insertOrder(100, price100)
	insertOrder(50, price100)
	insertOrder(50, price100)
	insertOrder(200, price99_50)

	depth, err := market.OrderBook(tx, "TECH", 10)
	require.NoError(t, err)
	require.Len(t, depth.Bids, 2)
	assert.True(t, depth.Bids[0].Price.Equal(price100))
	assert.Equal(t, int64(200), depth.Bids[0].Quantity)
	assert.True(t, depth.Bids[1].Price.Equal(price99_50))
	assert.Equal(t, int64(200), depth.Bids[1].Quantity)
}

// Scenario 10: 24h window excludes trades older than 24h (spec.md §8 #10).
func TestStats24hWindow(t *testing.T) {
	s := newStore(t)
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, tx.CreateCompany(domain.Company{Ticker: "TECH", Name: "Tech", TotalShares: 1000, FloatShares: 1000}))
	require.NoError(t, tx.CreateAccount(domain.Account{ID: "buyer", APIKeyDigest: "d1", CreatedAt: time.Now()}))
	require.NoError(t, tx.CreateAccount(domain.Account{ID: "seller", APIKeyDigest: "d2", CreatedAt: time.Now()}))
	require.NoError(t, tx.InsertOrder(domain.Order{ID: "buy-1", AccountID: "buyer", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Price: moneyPtr(t, "1.00"), Quantity: 1, Remaining: 0, Status: domain.Filled, SubmittedAt: time.Now()}))
	require.NoError(t, tx.InsertOrder(domain.Order{ID: "sell-1", AccountID: "seller", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Price: moneyPtr(t, "1.00"), Quantity: 1, Remaining: 0, Status: domain.Filled, SubmittedAt: time.Now()}))

	now := time.Now()
	require.NoError(t, tx.InsertTrade(domain.Trade{
		ID: "t1", Ticker: "TECH", Price: mustMoney(t, "40.00"), Quantity: 10,
		BuyerID: "buyer", SellerID: "seller", BuyOrderID: "buy-1", SellOrderID: "sell-1",
		ExecutedAt: now.Add(-25 * time.Hour),
	}))
	require.NoError(t, tx.InsertTrade(domain.Trade{
		ID: "t2", Ticker: "TECH", Price: mustMoney(t, "60.00"), Quantity: 5,
		BuyerID: "buyer", SellerID: "seller", BuyOrderID: "buy-1", SellOrderID: "sell-1",
		ExecutedAt: now.Add(-1 * time.Hour),
	}))

	stats, err := tx.Stats24h("TECH", now)
	require.NoError(t, err)
	require.NotNil(t, stats.High)
	require.NotNil(t, stats.Low)
	require.NotNil(t, stats.Opening)
	assert.True(t, stats.High.Equal(mustMoney(t, "60.00")))
	assert.True(t, stats.Low.Equal(mustMoney(t, "60.00")))
	assert.True(t, stats.Opening.Equal(mustMoney(t, "60.00")))
	assert.Equal(t, int64(5), stats.Volume)
}

func moneyPtr(t *testing.T, s string) *money.Money {
	m := mustMoney(t, s)
	return &m
}
