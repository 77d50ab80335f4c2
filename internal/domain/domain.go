// Package domain holds the core entity types from spec.md §3. It replaces
// the teacher's internal/common package (Order, Trade with float64 pricing
// and int-enum Side/OrderType) with the full entity set the exchange needs:
// Company, Account, Holding, Order, Trade, with decimal money and
// string-backed enums that round-trip cleanly through JSON and SQL.
package domain

import (
	"time"

	"fenrir/internal/money"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderType string

const (
	Limit  OrderType = "LIMIT"
	Market OrderType = "MARKET"
)

type OrderStatus string

const (
	Open      OrderStatus = "OPEN"
	Partial   OrderStatus = "PARTIAL"
	Filled    OrderStatus = "FILLED"
	Cancelled OrderStatus = "CANCELLED"
)

// Company is a tradeable security. Immutable after creation except via admin
// reset (spec.md §3).
type Company struct {
	Ticker      string
	Name        string
	TotalShares int64
	FloatShares int64
}

// Account is a trader/participant. CashBalance never goes negative.
type Account struct {
	ID           string
	APIKeyDigest string
	CashBalance  money.Money
	CreatedAt    time.Time
}

// Holding is the (account, ticker) share position. A zero-quantity holding
// does not exist in the store; it is deleted on full sell.
type Holding struct {
	AccountID string
	Ticker    string
	Quantity  int64
	CostBasis money.Money
}

// AverageCost returns CostBasis / Quantity, or the zero value if Quantity is
// zero (callers should not hold a zero-quantity Holding; see DeleteHolding).
func (h Holding) AverageCost() money.Money {
	return money.DivTruncate(h.CostBasis, h.Quantity)
}

// Order is a buy or sell instruction, resting in the book until terminal.
type Order struct {
	ID          string
	AccountID   string
	Ticker      string
	Side        Side
	Type        OrderType
	Price       *money.Money // nil for MARKET
	Quantity    int64
	Remaining   int64
	Status      OrderStatus
	SubmittedAt time.Time
}

// Resting reports whether the order currently occupies the book.
func (o Order) Resting() bool {
	return o.Status == Open || o.Status == Partial
}

// Terminal reports whether the order can no longer be mutated by matching.
func (o Order) Terminal() bool {
	return o.Status == Filled || o.Status == Cancelled
}

// Trade is an append-only record of one executed fill.
type Trade struct {
	ID          string
	Ticker      string
	Price       money.Money
	Quantity    int64
	BuyerID     string
	SellerID    string
	BuyOrderID  string
	SellOrderID string
	ExecutedAt  time.Time
}
