package store

import (
	"database/sql"
	"errors"
	"fmt"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
)

func (t *Tx) CreateCompany(c domain.Company) error {
	_, err := t.tx.Exec(
		`INSERT INTO companies (ticker, name, total_shares, float_shares) VALUES (?, ?, ?, ?)`,
		c.Ticker, c.Name, c.TotalShares, c.FloatShares,
	)
	if err != nil {
		return apperr.Wrap(apperr.KindDuplicate, err, "create company %s", c.Ticker)
	}
	return nil
}

func (t *Tx) GetCompany(ticker string) (domain.Company, error) {
	var c domain.Company
	err := t.tx.QueryRow(
		`SELECT ticker, name, total_shares, float_shares FROM companies WHERE ticker = ?`, ticker,
	).Scan(&c.Ticker, &c.Name, &c.TotalShares, &c.FloatShares)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Company{}, apperr.New(apperr.KindNotFound, "company %s not found", ticker)
	}
	if err != nil {
		return domain.Company{}, fmt.Errorf("get company %s: %w", ticker, err)
	}
	return c, nil
}

func (t *Tx) ListCompanies() ([]domain.Company, error) {
	rows, err := t.tx.Query(`SELECT ticker, name, total_shares, float_shares FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.Ticker, &c.Name, &c.TotalShares, &c.FloatShares); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
