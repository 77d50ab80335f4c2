// Package store is the entity store (spec.md §4.1): transactional,
// constraint-enforcing persistence for companies, accounts, holdings,
// orders and trades. It is the sole authoritative shared state (spec.md §5);
// every submission-and-matching pass runs inside one *Tx so that order
// updates, trade rows, cash deltas and holding mutations commit or fail
// together.
//
// Grounded on the teacher's use of a single long-lived handle guarded by
// the database driver (saiputravu-Exchange has no DB layer of its own —
// this package is new, built in the teacher's plain, no-ORM style and
// adapted from other_examples/manifests/ehrlich-b-trade's modernc.org/sqlite
// + database/sql usage). The zerolog logger handed to Open is used only for
// the startup notice that SQL echo is enabled; statements are not logged.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store owns the database handle. All mutation and projection access goes
// through a *Tx obtained from Begin, so that a matching pass is one
// indivisible unit (spec.md §5).
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if absent) a SQLite database at path and ensures the
// schema exists. When echo is true, Open logs one info line saying SQL echo
// is enabled; individual statements are not logged.
func Open(path string, echo bool, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection serializes writes at the driver level; matching
	// already serializes per-ticker in internal/engine, but spec.md §5
	// requires submissions across tickers to still observe consistent
	// snapshots against one store, so one writer connection is simplest.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	s := &Store{db: db, log: log}
	if echo {
		s.log.Info().Msg("sql echo enabled")
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Reset drops and recreates every table (spec.md §6 POST /admin/reset).
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"trades", "orders", "holdings", "accounts", "companies"} {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("recreate schema: %w", err)
	}
	return tx.Commit()
}

// Tx is one transaction over the store. Every field access below runs a
// plain SQL statement; there is no ORM layer, matching the teacher's
// directness elsewhere in the codebase.
type Tx struct {
	tx  *sql.Tx
	log zerolog.Logger
}

// Begin starts a new transaction. Callers must Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, log: s.log}, nil
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// sortableTimeLayout is RFC3339Nano with the fractional-second digits
// zero-padded to a fixed width instead of trimmed. time.RFC3339Nano's "9"
// placeholders drop trailing zeros, so two timestamps differing only in
// trailing-zero fraction length ("...500000000Z" vs "...5Z") compare wrong
// lexicographically — and SQLite orders submitted_at/executed_at as TEXT.
// The "0" placeholders below keep every formatted timestamp the same
// width, so string ordering matches chronological ordering exactly.
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(sortableTimeLayout) }

func parseTime(s string) time.Time {
	ts, err := time.Parse(sortableTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
