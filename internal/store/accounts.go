package store

import (
	"database/sql"
	"errors"
	"fmt"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
)

func (t *Tx) CreateAccount(a domain.Account) error {
	_, err := t.tx.Exec(
		`INSERT INTO accounts (id, api_key_digest, cash_cents, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.APIKeyDigest, money.ToCents(a.CashBalance), formatTime(a.CreatedAt))
	if err != nil {
		return apperr.Wrap(apperr.KindDuplicate, err, "create account %s", a.ID)
	}
	return nil
}

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	var cents int64
	var createdAt string
	if err := row.Scan(&a.ID, &a.APIKeyDigest, &cents, &createdAt); err != nil {
		return domain.Account{}, err
	}
	a.CashBalance = money.FromCents(cents)
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

func (t *Tx) GetAccount(id string) (domain.Account, error) {
	row := t.tx.QueryRow(`SELECT id, api_key_digest, cash_cents, created_at FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, apperr.New(apperr.KindNotFound, "account %s not found", id)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

func (t *Tx) GetAccountByAPIKeyDigest(digest string) (domain.Account, error) {
	row := t.tx.QueryRow(`SELECT id, api_key_digest, cash_cents, created_at FROM accounts WHERE api_key_digest = ?`, digest)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, apperr.New(apperr.KindUnauthorized, "unknown api key")
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account by digest: %w", err)
	}
	return a, nil
}

func (t *Tx) ListAccounts() ([]domain.Account, error) {
	rows, err := t.tx.Query(`SELECT id, api_key_digest, cash_cents, created_at FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetCash overwrites an account's cash balance. Used by the settlement
// ledger for both increments and decrements; the CHECK(cash_cents >= 0)
// constraint rejects any update that would overdraw.
func (t *Tx) SetCash(accountID string, newBalance money.Money) error {
	res, err := t.tx.Exec(`UPDATE accounts SET cash_cents = ? WHERE id = ?`, money.ToCents(newBalance), accountID)
	if err != nil {
		return apperr.Wrap(apperr.KindIllegalState, err, "update cash for %s", accountID)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "account %s not found", accountID)
	}
	return nil
}
