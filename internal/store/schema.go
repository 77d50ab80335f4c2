package store

// schema creates the tables backing the entities in spec.md §3. Money
// columns are INTEGER cents; the CHECK constraints enforce the positivity
// and non-negativity invariants directly in SQLite rather than only in Go,
// the way the teacher's original_source SQLAlchemy models carry
// CheckConstraints alongside application-level validation.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
	ticker       TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	total_shares INTEGER NOT NULL CHECK (total_shares > 0),
	float_shares INTEGER NOT NULL CHECK (float_shares >= 0),
	CHECK (float_shares <= total_shares)
);

CREATE TABLE IF NOT EXISTS accounts (
	id              TEXT PRIMARY KEY,
	api_key_digest  TEXT NOT NULL UNIQUE,
	cash_cents      INTEGER NOT NULL CHECK (cash_cents >= 0),
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	account_id      TEXT NOT NULL REFERENCES accounts(id),
	ticker          TEXT NOT NULL REFERENCES companies(ticker),
	quantity        INTEGER NOT NULL CHECK (quantity > 0),
	cost_basis_cents INTEGER NOT NULL CHECK (cost_basis_cents >= 0),
	PRIMARY KEY (account_id, ticker)
);

CREATE TABLE IF NOT EXISTS orders (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL REFERENCES accounts(id),
	ticker        TEXT NOT NULL REFERENCES companies(ticker),
	side          TEXT NOT NULL CHECK (side IN ('BUY','SELL')),
	order_type    TEXT NOT NULL CHECK (order_type IN ('LIMIT','MARKET')),
	price_cents   INTEGER CHECK (price_cents IS NULL OR price_cents > 0),
	quantity      INTEGER NOT NULL CHECK (quantity > 0),
	remaining     INTEGER NOT NULL CHECK (remaining >= 0 AND remaining <= quantity),
	status        TEXT NOT NULL CHECK (status IN ('OPEN','PARTIAL','FILLED','CANCELLED')),
	submitted_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_book
	ON orders (ticker, side, status, price_cents, submitted_at);
CREATE INDEX IF NOT EXISTS idx_orders_account
	ON orders (account_id, ticker, side, status);

CREATE TABLE IF NOT EXISTS trades (
	id             TEXT PRIMARY KEY,
	ticker         TEXT NOT NULL REFERENCES companies(ticker),
	price_cents    INTEGER NOT NULL CHECK (price_cents > 0),
	quantity       INTEGER NOT NULL CHECK (quantity > 0),
	buyer_id       TEXT NOT NULL REFERENCES accounts(id),
	seller_id      TEXT NOT NULL REFERENCES accounts(id),
	buy_order_id   TEXT NOT NULL REFERENCES orders(id),
	sell_order_id  TEXT NOT NULL REFERENCES orders(id),
	executed_at    TEXT NOT NULL,
	CHECK (buyer_id != seller_id)
);

CREATE INDEX IF NOT EXISTS idx_trades_ticker_time ON trades (ticker, executed_at);
`
