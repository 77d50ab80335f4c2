package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/money"
)

func TestCentsRoundTrip(t *testing.T) {
	m := money.FromCents(4500)
	assert.Equal(t, int64(4500), money.ToCents(m))
	assert.Equal(t, "45.00", m.StringFixed(2))
}

func TestMulExact(t *testing.T) {
	price, err := money.FromString("45.00")
	require.NoError(t, err)
	got := money.Mul(price, 100)
	assert.True(t, got.Equal(mustParse(t, "4500.00")))
}

// DivTruncate rounds toward zero at 2 decimals (spec.md §9).
func TestDivTruncateRoundsTowardZero(t *testing.T) {
	total, err := money.FromString("10.00")
	require.NoError(t, err)
	got := money.DivTruncate(total, 3)
	assert.True(t, got.Equal(mustParse(t, "3.33")), "got %s", got)
}

func TestDivTruncateZeroQuantity(t *testing.T) {
	total, err := money.FromString("10.00")
	require.NoError(t, err)
	assert.True(t, money.DivTruncate(total, 0).Equal(money.Zero))
}

func mustParse(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.FromString(s)
	require.NoError(t, err)
	return m
}
