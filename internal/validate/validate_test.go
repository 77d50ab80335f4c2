package validate_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/store"
	"fenrir/internal/validate"
)

func newTx(t *testing.T) *store.Tx {
	t.Helper()
	s, err := store.Open(":memory:", false, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback() })

	require.NoError(t, tx.CreateCompany(domain.Company{Ticker: "TECH", Name: "Tech", TotalShares: 1000, FloatShares: 1000}))
	require.NoError(t, tx.CreateAccount(domain.Account{ID: "acc", APIKeyDigest: "d", CreatedAt: time.Now()}))
	return tx
}

func price(s string) *money.Money {
	m, err := money.FromString(s)
	if err != nil {
		panic(err)
	}
	return &m
}

func TestUnknownTickerRejected(t *testing.T) {
	tx := newTx(t)
	_, err := validate.Check(tx, validate.Request{AccountID: "acc", Ticker: "NOPE", Side: domain.Buy, Type: domain.Market, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestNonPositiveQuantityRejected(t *testing.T) {
	tx := newTx(t)
	_, err := validate.Check(tx, validate.Request{AccountID: "acc", Ticker: "TECH", Side: domain.Buy, Type: domain.Market, Quantity: 0})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestLimitWithoutPriceRejected(t *testing.T) {
	tx := newTx(t)
	_, err := validate.Check(tx, validate.Request{AccountID: "acc", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestSellWithoutSharesRejected(t *testing.T) {
	tx := newTx(t)
	_, err := validate.Check(tx, validate.Request{AccountID: "acc", Ticker: "TECH", Side: domain.Sell, Type: domain.Limit, Quantity: 10, Price: price("10.00")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientResources, apperr.KindOf(err))
}

func TestBuyLimitInsufficientCashRejected(t *testing.T) {
	tx := newTx(t)
	_, err := validate.Check(tx, validate.Request{AccountID: "acc", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 100, Price: price("100.00")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientResources, apperr.KindOf(err))
}

func TestValidOrderAccepted(t *testing.T) {
	tx := newTx(t)
	require.NoError(t, tx.SetCash("acc", func() money.Money { m, _ := money.FromString("1000.00"); return m }()))
	order, err := validate.Check(tx, validate.Request{AccountID: "acc", Ticker: "TECH", Side: domain.Buy, Type: domain.Limit, Quantity: 1, Price: price("100.00")})
	require.NoError(t, err)
	assert.Equal(t, domain.Open, order.Status)
	assert.Equal(t, int64(1), order.Remaining)
}
