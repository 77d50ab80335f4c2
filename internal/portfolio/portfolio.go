// Package portfolio implements the portfolio projection of spec.md §4.6:
// holdings valued at last trade price, unrealized P/L vs. cost basis.
// Grounded on original_source/exchange/app/services/portfolio.py
// (get_holdings_with_pnl, get_portfolio_summary), including its
// null-propagation rule: a ticker with no last price makes its value and
// every dependent figure null rather than partial.
package portfolio

import (
	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

// HoldingView is one priced holding line.
type HoldingView struct {
	Ticker               string
	Quantity             int64
	CostBasis            money.Money
	LastPrice            *money.Money
	CurrentValue         *money.Money
	UnrealizedPnL        *money.Money
	UnrealizedPnLPercent *money.Money
}

func priceHolding(tx *store.Tx, h domain.Holding) (HoldingView, error) {
	last, err := tx.LastPrice(h.Ticker)
	if err != nil {
		return HoldingView{}, err
	}

	v := HoldingView{Ticker: h.Ticker, Quantity: h.Quantity, CostBasis: h.CostBasis, LastPrice: last}
	if last == nil {
		return v, nil
	}

	currentValue := money.Mul(*last, h.Quantity)
	v.CurrentValue = &currentValue

	pnl := currentValue.Sub(h.CostBasis)
	v.UnrealizedPnL = &pnl

	if !h.CostBasis.IsZero() {
		pct := pnl.Div(h.CostBasis).Mul(money.FromCents(10000)).Truncate(2)
		v.UnrealizedPnLPercent = &pct
	}
	return v, nil
}

// Holdings returns every priced holding for accountID.
func Holdings(tx *store.Tx, accountID string) ([]HoldingView, error) {
	hs, err := tx.ListHoldings(accountID)
	if err != nil {
		return nil, err
	}
	out := make([]HoldingView, 0, len(hs))
	for _, h := range hs {
		v, err := priceHolding(tx, h)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Summary is the account-level rollup (spec.md §4.6).
type Summary struct {
	Cash          money.Money
	HoldingsValue *money.Money
	TotalValue    *money.Money
}

// BuildSummary computes cash + sum(current_value) = total_value; if any
// held ticker lacks a last price, HoldingsValue and TotalValue are nil
// rather than computed over a partial set.
func BuildSummary(tx *store.Tx, accountID string) (Summary, error) {
	acc, err := tx.GetAccount(accountID)
	if err != nil {
		return Summary{}, err
	}
	holdings, err := Holdings(tx, accountID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Cash: acc.CashBalance}
	if len(holdings) == 0 {
		empty := money.Zero
		total := acc.CashBalance
		sum.HoldingsValue = &empty
		sum.TotalValue = &total
		return sum, nil
	}

	total := money.Zero
	for _, h := range holdings {
		if h.CurrentValue == nil {
			return sum, nil // missing a last price: leave HoldingsValue/TotalValue nil
		}
		total = total.Add(*h.CurrentValue)
	}
	sum.HoldingsValue = &total
	grand := acc.CashBalance.Add(total)
	sum.TotalValue = &grand
	return sum, nil
}
