// Package validate implements the order validator (spec.md §4.2): the five
// pre-acceptance checks run before an order is ever persisted. Grounded on
// original_source/exchange/app/services/trader.py's place_order, which
// performs the same sequence of checks (company lookup, quantity, price
// presence, free-shares, free-cash) before committing a new Order row.
package validate

import (
	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

// Request is the caller-supplied order payload, before an id or timestamp
// is minted.
type Request struct {
	AccountID string
	Ticker    string
	Side      domain.Side
	Type      domain.OrderType
	Quantity  int64
	Price     *money.Money // required for LIMIT, ignored for MARKET
}

// Check runs the five checks of spec.md §4.2 against tx and returns the
// order ready to be inserted (id/timestamp still unset — the caller mints
// those, since validate has no access to time/uuid generation policy).
// Any failure is an *apperr.Error with a Kind describing the reason.
func Check(tx *store.Tx, req Request) (domain.Order, error) {
	// 1. Ticker must refer to an existing company.
	if _, err := tx.GetCompany(req.Ticker); err != nil {
		return domain.Order{}, apperr.Wrap(apperr.KindInvalidInput, err, "unknown ticker %s", req.Ticker)
	}

	// 2. Quantity must be a positive integer.
	if req.Quantity <= 0 {
		return domain.Order{}, apperr.New(apperr.KindInvalidInput, "quantity must be positive")
	}

	// 3. LIMIT requires a strictly positive price; MARKET discards any price.
	var price *money.Money
	switch req.Type {
	case domain.Limit:
		if req.Price == nil || !req.Price.IsPositive() {
			return domain.Order{}, apperr.New(apperr.KindInvalidInput, "limit order requires a positive price")
		}
		p := req.Price.Truncate(2)
		price = &p
	case domain.Market:
		price = nil
	default:
		return domain.Order{}, apperr.New(apperr.KindInvalidInput, "unknown order type %q", req.Type)
	}

	switch req.Side {
	case domain.Buy, domain.Sell:
	default:
		return domain.Order{}, apperr.New(apperr.KindInvalidInput, "unknown side %q", req.Side)
	}

	// 4. SELL: free shares >= quantity.
	if req.Side == domain.Sell {
		free, err := tx.FreeShares(req.AccountID, req.Ticker)
		if err != nil {
			return domain.Order{}, err
		}
		if free < req.Quantity {
			return domain.Order{}, apperr.New(apperr.KindInsufficientResources,
				"insufficient free shares: have %d, need %d", free, req.Quantity)
		}
	}

	// 5. BUY LIMIT: free cash >= quantity * price. BUY MARKET reserves no
	// cash up front; it is re-validated per match at execution time (§4.3).
	if req.Side == domain.Buy && req.Type == domain.Limit {
		free, err := tx.FreeCash(req.AccountID)
		if err != nil {
			return domain.Order{}, err
		}
		cost := money.Mul(*price, req.Quantity)
		if free.LessThan(cost) {
			return domain.Order{}, apperr.New(apperr.KindInsufficientResources,
				"insufficient free cash: have %s, need %s", free, cost)
		}
	}

	return domain.Order{
		AccountID: req.AccountID,
		Ticker:    req.Ticker,
		Side:      req.Side,
		Type:      req.Type,
		Price:     price,
		Quantity:  req.Quantity,
		Remaining: req.Quantity,
		Status:    domain.Open,
	}, nil
}
