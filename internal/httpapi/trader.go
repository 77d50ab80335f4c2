package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
	"fenrir/internal/portfolio"
	"fenrir/internal/store"
	"fenrir/internal/validate"
)

// Authenticated routes (spec.md §6): credential carried in X-API-Key,
// resolved to an account id by authMiddleware.

func (a *API) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	acc, err := tx.GetAccount(accountIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		AccountID:   acc.ID,
		CashBalance: acc.CashBalance.StringFixed(2),
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
	})
}

type holdingResponse struct {
	Ticker               string  `json:"ticker"`
	Quantity             int64   `json:"quantity"`
	CostBasis            string  `json:"cost_basis"`
	LastPrice            *string `json:"last_price"`
	CurrentValue         *string `json:"current_value"`
	UnrealizedPnL        *string `json:"unrealized_pnl"`
	UnrealizedPnLPercent *string `json:"unrealized_pnl_percent"`
}

func toHoldingResponse(h portfolio.HoldingView) holdingResponse {
	return holdingResponse{
		Ticker:               h.Ticker,
		Quantity:             h.Quantity,
		CostBasis:            h.CostBasis.StringFixed(2),
		LastPrice:            optionalMoneyString(h.LastPrice),
		CurrentValue:         optionalMoneyString(h.CurrentValue),
		UnrealizedPnL:        optionalMoneyString(h.UnrealizedPnL),
		UnrealizedPnLPercent: optionalMoneyString(h.UnrealizedPnLPercent),
	}
}

func (a *API) handleGetHoldings(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	views, err := portfolio.Holdings(tx, accountIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]holdingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toHoldingResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

type submitOrderRequest struct {
	Ticker    string  `json:"ticker"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
	Quantity  int64   `json:"quantity"`
	Price     *string `json:"price"`
}

type orderResponse struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"account_id"`
	Ticker      string  `json:"ticker"`
	Side        string  `json:"side"`
	OrderType   string  `json:"order_type"`
	Price       *string `json:"price"`
	Quantity    int64   `json:"quantity"`
	Remaining   int64   `json:"remaining"`
	Status      string  `json:"status"`
	SubmittedAt string  `json:"submitted_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID: o.ID, AccountID: o.AccountID, Ticker: o.Ticker,
		Side: string(o.Side), OrderType: string(o.Type),
		Price: optionalMoneyString(o.Price), Quantity: o.Quantity, Remaining: o.Remaining,
		Status: string(o.Status), SubmittedAt: o.SubmittedAt.Format(time.RFC3339),
	}
}

func (a *API) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.KindInvalidInput, err, "malformed body"))
		return
	}

	var price *money.Money
	if req.Price != nil {
		p, err := parseMoney(*req.Price)
		if err != nil {
			writeError(w, apperr.New(apperr.KindInvalidInput, "invalid price"))
			return
		}
		price = &p
	}

	result, err := a.exchange.Submit(r.Context(), validate.Request{
		AccountID: accountIDFrom(r),
		Ticker:    strings.ToUpper(req.Ticker),
		Side:      domain.Side(strings.ToUpper(req.Side)),
		Type:      domain.OrderType(strings.ToUpper(req.OrderType)),
		Quantity:  req.Quantity,
		Price:     price,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order))
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	orders, err := tx.ListOrders(store.OrderFilter{
		AccountID: accountIDFrom(r),
		Ticker:    r.URL.Query().Get("ticker"),
		Status:    domain.OrderStatus(strings.ToUpper(r.URL.Query().Get("status"))),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	o, err := tx.GetOrder(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if o.AccountID != accountIDFrom(r) {
		writeError(w, apperr.New(apperr.KindNotFound, "order %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (a *API) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, err := a.exchange.Cancel(r.Context(), accountIDFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Cash          string  `json:"cash"`
	HoldingsValue *string `json:"holdings_value"`
	TotalValue    *string `json:"total_value"`
}

func (a *API) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	sum, err := portfolio.BuildSummary(tx, accountIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Cash:          sum.Cash.StringFixed(2),
		HoldingsValue: optionalMoneyString(sum.HoldingsValue),
		TotalValue:    optionalMoneyString(sum.TotalValue),
	})
}

func (a *API) handlePortfolioHoldings(w http.ResponseWriter, r *http.Request) {
	a.handleGetHoldings(w, r)
}
