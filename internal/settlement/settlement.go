// Package settlement applies exactly one fill atomically (spec.md §4.4).
// Grounded on original_source/exchange/app/services/matching.py's
// _transfer_cash / _transfer_shares / _update_order_after_fill, translated
// into the store's transactional primitives; cost-basis arithmetic (not
// present in the Python layer) follows spec.md §4.4 step 3 directly.
package settlement

import (
	"time"

	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

// Fill describes one execution between a taker and a resting order.
type Fill struct {
	Ticker     string
	Price      money.Money
	Quantity   int64
	BuyOrder   *domain.Order
	SellOrder  *domain.Order
	BuyerID    string
	SellerID   string
	ExecutedAt time.Time
	NewTradeID string
}

// Apply performs the five effects of spec.md §4.4 within tx: cash transfer,
// share transfer, cost-basis update, order status transition on both
// orders, and trade append. Both order pointers are mutated in place to
// reflect their new remaining/status, so the caller's in-memory copies of
// the taker and resting order stay consistent with what was committed.
func Apply(tx *store.Tx, f Fill) error {
	notional := money.Mul(f.Price, f.Quantity)

	// 1. Cash transfer.
	buyer, err := tx.GetAccount(f.BuyerID)
	if err != nil {
		return err
	}
	seller, err := tx.GetAccount(f.SellerID)
	if err != nil {
		return err
	}
	if err := tx.SetCash(f.BuyerID, buyer.CashBalance.Sub(notional)); err != nil {
		return err
	}
	if err := tx.SetCash(f.SellerID, seller.CashBalance.Add(notional)); err != nil {
		return err
	}

	// 2 & 3. Share transfer and cost-basis update.
	if err := creditBuyer(tx, f.BuyerID, f.Ticker, f.Quantity, notional); err != nil {
		return err
	}
	if err := debitSeller(tx, f.SellerID, f.Ticker, f.Quantity); err != nil {
		return err
	}

	// 4. Order status transitions.
	if err := applyFillToOrder(tx, f.BuyOrder, f.Quantity); err != nil {
		return err
	}
	if err := applyFillToOrder(tx, f.SellOrder, f.Quantity); err != nil {
		return err
	}

	// 5. Trade append.
	return tx.InsertTrade(domain.Trade{
		ID:          f.NewTradeID,
		Ticker:      f.Ticker,
		Price:       f.Price,
		Quantity:    f.Quantity,
		BuyerID:     f.BuyerID,
		SellerID:    f.SellerID,
		BuyOrderID:  f.BuyOrder.ID,
		SellOrderID: f.SellOrder.ID,
		ExecutedAt:  f.ExecutedAt,
	})
}

func creditBuyer(tx *store.Tx, accountID, ticker string, qty int64, notional money.Money) error {
	h, ok, err := tx.GetHolding(accountID, ticker)
	if err != nil {
		return err
	}
	if !ok {
		h = domain.Holding{AccountID: accountID, Ticker: ticker}
	}
	h.Quantity += qty
	h.CostBasis = h.CostBasis.Add(notional)
	return tx.UpsertHolding(h)
}

func debitSeller(tx *store.Tx, accountID, ticker string, qty int64) error {
	h, ok, err := tx.GetHolding(accountID, ticker)
	if err != nil {
		return err
	}
	if !ok {
		// Should not happen: the validator guarantees free shares at
		// acceptance time, and self-trades are excluded by the matcher.
		h = domain.Holding{AccountID: accountID, Ticker: ticker}
	}
	avg := h.AverageCost()
	h.CostBasis = h.CostBasis.Sub(money.Mul(avg, qty))
	h.Quantity -= qty

	if h.Quantity <= 0 {
		return tx.DeleteHolding(accountID, ticker)
	}
	return tx.UpsertHolding(h)
}

func applyFillToOrder(tx *store.Tx, o *domain.Order, qty int64) error {
	o.Remaining -= qty
	if o.Remaining == 0 {
		o.Status = domain.Filled
	} else {
		o.Status = domain.Partial
	}
	return tx.UpdateOrderFill(o.ID, o.Remaining, o.Status)
}
