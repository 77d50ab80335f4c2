package store

import (
	"database/sql"
	"errors"
	"fmt"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
)

func (t *Tx) GetHolding(accountID, ticker string) (domain.Holding, bool, error) {
	var h domain.Holding
	var costCents int64
	err := t.tx.QueryRow(
		`SELECT account_id, ticker, quantity, cost_basis_cents FROM holdings WHERE account_id = ? AND ticker = ?`,
		accountID, ticker,
	).Scan(&h.AccountID, &h.Ticker, &h.Quantity, &costCents)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Holding{}, false, nil
	}
	if err != nil {
		return domain.Holding{}, false, fmt.Errorf("get holding %s/%s: %w", accountID, ticker, err)
	}
	h.CostBasis = money.FromCents(costCents)
	return h, true, nil
}

func (t *Tx) ListHoldings(accountID string) ([]domain.Holding, error) {
	rows, err := t.tx.Query(
		`SELECT account_id, ticker, quantity, cost_basis_cents FROM holdings WHERE account_id = ? ORDER BY ticker`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("list holdings for %s: %w", accountID, err)
	}
	defer rows.Close()

	var out []domain.Holding
	for rows.Next() {
		var h domain.Holding
		var costCents int64
		if err := rows.Scan(&h.AccountID, &h.Ticker, &h.Quantity, &costCents); err != nil {
			return nil, err
		}
		h.CostBasis = money.FromCents(costCents)
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpsertHolding creates the row if absent, else overwrites quantity and cost
// basis. Settlement computes the new values and passes the final state.
func (t *Tx) UpsertHolding(h domain.Holding) error {
	_, err := t.tx.Exec(`
		INSERT INTO holdings (account_id, ticker, quantity, cost_basis_cents) VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id, ticker) DO UPDATE SET quantity = excluded.quantity, cost_basis_cents = excluded.cost_basis_cents`,
		h.AccountID, h.Ticker, h.Quantity, money.ToCents(h.CostBasis))
	if err != nil {
		return apperr.Wrap(apperr.KindIllegalState, err, "upsert holding %s/%s", h.AccountID, h.Ticker)
	}
	return nil
}

func (t *Tx) DeleteHolding(accountID, ticker string) error {
	_, err := t.tx.Exec(`DELETE FROM holdings WHERE account_id = ? AND ticker = ?`, accountID, ticker)
	if err != nil {
		return fmt.Errorf("delete holding %s/%s: %w", accountID, ticker, err)
	}
	return nil
}

// FreeShares returns held quantity minus the sum of remaining on the
// owner's own OPEN/PARTIAL SELL orders for ticker (spec.md §4.2 check 4).
func (t *Tx) FreeShares(accountID, ticker string) (int64, error) {
	h, ok, err := t.GetHolding(accountID, ticker)
	if err != nil {
		return 0, err
	}
	var held int64
	if ok {
		held = h.Quantity
	}

	var reserved sql.NullInt64
	err = t.tx.QueryRow(`
		SELECT SUM(remaining) FROM orders
		WHERE account_id = ? AND ticker = ? AND side = 'SELL' AND status IN ('OPEN','PARTIAL')`,
		accountID, ticker,
	).Scan(&reserved)
	if err != nil {
		return 0, fmt.Errorf("sum reserved shares: %w", err)
	}
	return held - reserved.Int64, nil
}

// FreeCash returns cash_balance minus the sum of remaining*price over the
// owner's OPEN/PARTIAL BUY LIMIT orders (spec.md §4.2 check 5).
func (t *Tx) FreeCash(accountID string) (money.Money, error) {
	acc, err := t.GetAccount(accountID)
	if err != nil {
		return money.Zero, err
	}

	var reservedCents sql.NullInt64
	err = t.tx.QueryRow(`
		SELECT SUM(remaining * price_cents) FROM orders
		WHERE account_id = ? AND side = 'BUY' AND order_type = 'LIMIT' AND status IN ('OPEN','PARTIAL')`,
		accountID,
	).Scan(&reservedCents)
	if err != nil {
		return money.Zero, fmt.Errorf("sum reserved cash: %w", err)
	}
	free := money.ToCents(acc.CashBalance) - reservedCents.Int64
	return money.FromCents(free), nil
}
