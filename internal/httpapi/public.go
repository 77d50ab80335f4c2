package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fenrir/internal/domain"
	"fenrir/internal/market"
	"fenrir/internal/money"
	"fenrir/internal/store"
)

// Public routes carry no auth, grounded on
// original_source/exchange/app/services/public.py.

func (a *API) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	companies, err := tx.ListCompanies()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	c, err := tx.GetCompany(ticker)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompanyResponse(c))
}

func clampInt(s string, def, lo, hi int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

type depthLevelResponse struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

type orderBookResponse struct {
	Ticker string               `json:"ticker"`
	Bids   []depthLevelResponse `json:"bids"`
	Asks   []depthLevelResponse `json:"asks"`
}

func (a *API) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	depth := clampInt(r.URL.Query().Get("depth"), 10, 1, 50)

	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.GetCompany(ticker); err != nil {
		writeError(w, err)
		return
	}
	d, err := market.OrderBook(tx, ticker, depth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderBookResponse{
		Ticker: ticker,
		Bids:   toDepthResponse(d.Bids),
		Asks:   toDepthResponse(d.Asks),
	})
}

func toDepthResponse(levels []store.DepthLevel) []depthLevelResponse {
	out := make([]depthLevelResponse, 0, len(levels))
	for _, lv := range levels {
		out = append(out, depthLevelResponse{Price: lv.Price.StringFixed(2), Quantity: lv.Quantity})
	}
	return out
}

type tradeResponse struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	BuyerID     string `json:"buyer_id"`
	SellerID    string `json:"seller_id"`
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`
	ExecutedAt  string `json:"executed_at"`
}

func toTradeResponse(t domain.Trade) tradeResponse {
	return tradeResponse{
		ID: t.ID, Ticker: t.Ticker, Price: t.Price.StringFixed(2), Quantity: t.Quantity,
		BuyerID: t.BuyerID, SellerID: t.SellerID,
		BuyOrderID: t.BuyOrderID, SellOrderID: t.SellOrderID,
		ExecutedAt: t.ExecutedAt.Format(time.RFC3339),
	}
}

func (a *API) handleTrades(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	limit := clampInt(r.URL.Query().Get("limit"), 50, 1, 500)

	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.GetCompany(ticker); err != nil {
		writeError(w, err)
		return
	}
	trades, err := market.RecentTrades(tx, ticker, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func optionalMoneyString(m *money.Money) *string {
	if m == nil {
		return nil
	}
	s := m.StringFixed(2)
	return &s
}

type marketDataResponse struct {
	Ticker     string  `json:"ticker"`
	LastPrice  *string `json:"last_price"`
	High24h    *string `json:"high_24h"`
	Low24h     *string `json:"low_24h"`
	Volume24h  int64   `json:"volume_24h"`
	Opening24h *string `json:"opening_24h"`
	Change24h  *string `json:"change_24h"`
	MarketCap  *string `json:"market_cap"`
	Spread     *string `json:"spread"`
}

func toMarketDataResponse(s market.Snapshot) marketDataResponse {
	return marketDataResponse{
		Ticker:     s.Ticker,
		LastPrice:  optionalMoneyString(s.LastPrice),
		High24h:    optionalMoneyString(s.High24h),
		Low24h:     optionalMoneyString(s.Low24h),
		Volume24h:  s.Volume24h,
		Opening24h: optionalMoneyString(s.Opening24h),
		Change24h:  optionalMoneyString(s.Change24h),
		MarketCap:  optionalMoneyString(s.MarketCap),
		Spread:     optionalMoneyString(s.Spread),
	}
}

func (a *API) handleMarketDataOne(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.GetCompany(ticker); err != nil {
		writeError(w, err)
		return
	}
	snap, err := market.Build(tx, ticker, time.Now(), a.depth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketDataResponse(snap))
}

func (a *API) handleMarketDataAll(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	companies, err := tx.ListCompanies()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]marketDataResponse, 0, len(companies))
	for _, c := range companies {
		snap, err := market.Build(tx, c.Ticker, time.Now(), a.depth)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, toMarketDataResponse(snap))
	}
	writeJSON(w, http.StatusOK, out)
}
