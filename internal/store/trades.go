package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fenrir/internal/domain"
	"fenrir/internal/money"
)

func (t *Tx) InsertTrade(tr domain.Trade) error {
	_, err := t.tx.Exec(`
		INSERT INTO trades (id, ticker, price_cents, quantity, buyer_id, seller_id, buy_order_id, sell_order_id, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.Ticker, money.ToCents(tr.Price), tr.Quantity, tr.BuyerID, tr.SellerID,
		tr.BuyOrderID, tr.SellOrderID, formatTime(tr.ExecutedAt))
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", tr.ID, err)
	}
	return nil
}

func scanTrade(row interface{ Scan(...any) error }) (domain.Trade, error) {
	var tr domain.Trade
	var cents int64
	var executedAt string
	if err := row.Scan(&tr.ID, &tr.Ticker, &cents, &tr.Quantity, &tr.BuyerID, &tr.SellerID,
		&tr.BuyOrderID, &tr.SellOrderID, &executedAt); err != nil {
		return domain.Trade{}, err
	}
	tr.Price = money.FromCents(cents)
	tr.ExecutedAt = parseTime(executedAt)
	return tr, nil
}

const tradeCols = `id, ticker, price_cents, quantity, buyer_id, seller_id, buy_order_id, sell_order_id, executed_at`

// RecentTrades returns up to limit most recent trades for ticker, newest first.
func (t *Tx) RecentTrades(ticker string, limit int) ([]domain.Trade, error) {
	rows, err := t.tx.Query(
		`SELECT `+tradeCols+` FROM trades WHERE ticker = ? ORDER BY executed_at DESC LIMIT ?`,
		ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("recent trades %s: %w", ticker, err)
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		tr, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// LastPrice returns the most recent trade price for ticker, or nil if none.
func (t *Tx) LastPrice(ticker string) (*money.Money, error) {
	var cents int64
	err := t.tx.QueryRow(
		`SELECT price_cents FROM trades WHERE ticker = ? ORDER BY executed_at DESC LIMIT 1`, ticker,
	).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last price %s: %w", ticker, err)
	}
	p := money.FromCents(cents)
	return &p, nil
}

// Stats24h carries the 24h market-data aggregates (spec.md §4.5).
type Stats24h struct {
	High    *money.Money
	Low     *money.Money
	Volume  int64
	Opening *money.Money
}

func (t *Tx) Stats24h(ticker string, now time.Time) (Stats24h, error) {
	cutoff := formatTime(now.Add(-24 * time.Hour))

	var stats Stats24h
	var high, low sql.NullInt64
	var volume sql.NullInt64
	err := t.tx.QueryRow(
		`SELECT MAX(price_cents), MIN(price_cents), SUM(quantity) FROM trades
		 WHERE ticker = ? AND executed_at >= ?`, ticker, cutoff,
	).Scan(&high, &low, &volume)
	if err != nil {
		return Stats24h{}, fmt.Errorf("stats24h %s: %w", ticker, err)
	}
	if high.Valid {
		p := money.FromCents(high.Int64)
		stats.High = &p
	}
	if low.Valid {
		p := money.FromCents(low.Int64)
		stats.Low = &p
	}
	stats.Volume = volume.Int64

	var openingCents int64
	err = t.tx.QueryRow(
		`SELECT price_cents FROM trades WHERE ticker = ? AND executed_at >= ? ORDER BY executed_at ASC LIMIT 1`,
		ticker, cutoff,
	).Scan(&openingCents)
	if err == nil {
		p := money.FromCents(openingCents)
		stats.Opening = &p
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Stats24h{}, fmt.Errorf("opening price %s: %w", ticker, err)
	}
	return stats, nil
}
