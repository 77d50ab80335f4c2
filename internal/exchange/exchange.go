// Package exchange wires the control flow of spec.md §2: validator → store
// (insert OPEN) → matching engine → settlement ledger (per match) → store
// (update orders, write trade) → commit. It is the single entry point the
// HTTP layer calls for order submission and cancellation, so that the
// per-ticker lock and the store transaction are always acquired together.
package exchange

import (
	"context"

	"github.com/google/uuid"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/engine"
	"fenrir/internal/store"
	"fenrir/internal/validate"
)

type Exchange struct {
	store  *store.Store
	engine *engine.Engine
}

func New(s *store.Store, e *engine.Engine) *Exchange {
	return &Exchange{store: s, engine: e}
}

// SubmitResult is what a caller needs to render the HTTP response for a new
// order: the order's final resting state plus any trades it produced.
type SubmitResult struct {
	Order  domain.Order
	Trades []domain.Trade
}

// Submit validates, accepts and matches req, committing the whole
// submit-and-match pass as one transaction (spec.md §5).
func (x *Exchange) Submit(ctx context.Context, req validate.Request) (SubmitResult, error) {
	unlock := x.engine.Lock(req.Ticker)
	defer unlock()

	tx, err := x.store.Begin(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	defer tx.Rollback()

	order, err := validate.Check(tx, req)
	if err != nil {
		return SubmitResult{}, err
	}
	order.ID = uuid.NewString()
	order.SubmittedAt = x.engine.NowForSubmission()

	if err := tx.InsertOrder(order); err != nil {
		return SubmitResult{}, err
	}

	trades, err := x.engine.Match(tx, &order)
	if err != nil {
		return SubmitResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Order: order, Trades: trades}, nil
}

// Cancel cancels orderID iff it is still OPEN or PARTIAL (spec.md §5:
// cancellation races the matcher and loses gracefully).
func (x *Exchange) Cancel(ctx context.Context, accountID, orderID string) (domain.Order, error) {
	tx, err := x.store.Begin(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	defer tx.Rollback()

	o, err := tx.GetOrder(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.AccountID != accountID {
		return domain.Order{}, apperr.New(apperr.KindNotFound, "order %s not found", orderID)
	}

	unlock := x.engine.Lock(o.Ticker)
	defer unlock()

	ok, err := tx.CancelOrder(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, apperr.New(apperr.KindIllegalState, "order %s is already %s", orderID, o.Status)
	}
	o.Status = domain.Cancelled
	if o.Type == domain.Limit && o.Price != nil {
		x.engine.RemoveFromIndex(o)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (x *Exchange) Store() *store.Store { return x.store }
