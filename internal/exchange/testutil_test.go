package exchange_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"fenrir/internal/domain"
	"fenrir/internal/engine"
	"fenrir/internal/exchange"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

// newTestExchange builds a fresh in-memory exchange, the way the teacher's
// former internal/tests/orderbook_test.go built a fresh OrderBook per test.
func newTestExchange(t *testing.T) *exchange.Exchange {
	t.Helper()
	s, err := store.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	idCounter := 0
	idGen := func() string {
		idCounter++
		return fmt.Sprintf("trade-%d", idCounter)
	}

	eng := engine.New(store.NewBookIndex(), idGen, time.Now)
	return exchange.New(s, eng)
}

func createCompany(t *testing.T, x *exchange.Exchange, ticker string, total, float int64) {
	t.Helper()
	tx, err := x.Store().Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, tx.CreateCompany(domain.Company{Ticker: ticker, Name: ticker, TotalShares: total, FloatShares: float}))
	require.NoError(t, tx.Commit())
}

func createAccount(t *testing.T, x *exchange.Exchange, id string, cash string) {
	t.Helper()
	tx, err := x.Store().Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, tx.CreateAccount(domain.Account{
		ID: id, APIKeyDigest: id + "-digest", CashBalance: mustMoney(cash), CreatedAt: time.Now(),
	}))
	require.NoError(t, tx.Commit())
}

func giveHolding(t *testing.T, x *exchange.Exchange, accountID, ticker string, qty int64, costBasis string) {
	t.Helper()
	tx, err := x.Store().Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, tx.UpsertHolding(domain.Holding{
		AccountID: accountID, Ticker: ticker, Quantity: qty, CostBasis: mustMoney(costBasis),
	}))
	require.NoError(t, tx.Commit())
}

func mustMoney(s string) money.Money {
	m, err := money.FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}
