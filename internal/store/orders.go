package store

import (
	"database/sql"
	"errors"
	"fmt"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
)

func priceToCents(p *money.Money) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: money.ToCents(*p), Valid: true}
}

func centsToPrice(n sql.NullInt64) *money.Money {
	if !n.Valid {
		return nil
	}
	m := money.FromCents(n.Int64)
	return &m
}

func (t *Tx) InsertOrder(o domain.Order) error {
	_, err := t.tx.Exec(`
		INSERT INTO orders (id, account_id, ticker, side, order_type, price_cents, quantity, remaining, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.AccountID, o.Ticker, string(o.Side), string(o.Type), priceToCents(o.Price),
		o.Quantity, o.Remaining, string(o.Status), formatTime(o.SubmittedAt))
	if err != nil {
		return apperr.Wrap(apperr.KindDuplicate, err, "insert order %s", o.ID)
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	var side, typ, status, submittedAt string
	var priceCents sql.NullInt64
	if err := row.Scan(&o.ID, &o.AccountID, &o.Ticker, &side, &typ, &priceCents,
		&o.Quantity, &o.Remaining, &status, &submittedAt); err != nil {
		return domain.Order{}, err
	}
	o.Side = domain.Side(side)
	o.Type = domain.OrderType(typ)
	o.Status = domain.OrderStatus(status)
	o.Price = centsToPrice(priceCents)
	o.SubmittedAt = parseTime(submittedAt)
	return o, nil
}

const orderCols = `id, account_id, ticker, side, order_type, price_cents, quantity, remaining, status, submitted_at`

func (t *Tx) GetOrder(id string) (domain.Order, error) {
	row := t.tx.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

// UpdateOrderFill sets remaining and status after a fill or cancellation.
func (t *Tx) UpdateOrderFill(id string, remaining int64, status domain.OrderStatus) error {
	res, err := t.tx.Exec(`UPDATE orders SET remaining = ?, status = ? WHERE id = ?`, remaining, string(status), id)
	if err != nil {
		return apperr.Wrap(apperr.KindIllegalState, err, "update order %s", id)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "order %s not found", id)
	}
	return nil
}

// CancelOrder transitions id to CANCELLED iff it is currently OPEN or
// PARTIAL (spec.md §5 cancellation races the matcher). Returns false,nil if
// the row was already terminal.
func (t *Tx) CancelOrder(id string) (bool, error) {
	res, err := t.tx.Exec(
		`UPDATE orders SET status = 'CANCELLED' WHERE id = ? AND status IN ('OPEN','PARTIAL')`, id)
	if err != nil {
		return false, fmt.Errorf("cancel order %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RestingOrders returns every OPEN/PARTIAL LIMIT order for ticker, both
// sides, regardless of owner, oldest submission first (ties by id). Used at
// startup to warm the book index, which has no persistent state of its own
// across restarts.
func (t *Tx) RestingOrders(ticker string) ([]domain.Order, error) {
	rows, err := t.tx.Query(
		`SELECT `+orderCols+` FROM orders
		 WHERE ticker = ? AND order_type = 'LIMIT' AND status IN ('OPEN','PARTIAL')
		 ORDER BY submitted_at ASC, id ASC`,
		ticker)
	if err != nil {
		return nil, fmt.Errorf("resting orders %s: %w", ticker, err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type OrderFilter struct {
	AccountID string
	Ticker    string
	Status    domain.OrderStatus
}

func (t *Tx) ListOrders(f OrderFilter) ([]domain.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders WHERE account_id = ?`
	args := []any{f.AccountID}
	if f.Ticker != "" {
		q += ` AND ticker = ?`
		args = append(args, f.Ticker)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY submitted_at DESC`

	rows, err := t.tx.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DepthLevel is one aggregated price level of book depth.
type DepthLevel struct {
	Price    money.Money
	Quantity int64
}

// Depth aggregates OPEN/PARTIAL LIMIT orders of side into price levels
// (spec.md §4.5). Bids sort descending by price, asks ascending.
func (t *Tx) Depth(ticker string, side domain.Side, limit int) ([]DepthLevel, error) {
	order := "ASC"
	if side == domain.Buy {
		order = "DESC"
	}
	rows, err := t.tx.Query(
		`SELECT price_cents, SUM(remaining) FROM orders
		 WHERE ticker = ? AND side = ? AND order_type = 'LIMIT' AND status IN ('OPEN','PARTIAL')
		 GROUP BY price_cents ORDER BY price_cents `+order+` LIMIT ?`,
		ticker, string(side), limit)
	if err != nil {
		return nil, fmt.Errorf("depth %s %s: %w", ticker, side, err)
	}
	defer rows.Close()

	var out []DepthLevel
	for rows.Next() {
		var cents, qty int64
		if err := rows.Scan(&cents, &qty); err != nil {
			return nil, err
		}
		out = append(out, DepthLevel{Price: money.FromCents(cents), Quantity: qty})
	}
	return out, rows.Err()
}
