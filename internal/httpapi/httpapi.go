// Package httpapi is the HTTP transport (spec.md §6), replacing the
// teacher's binary TCP wire protocol (internal/net/messages.go,
// internal/net/server.go) with a JSON REST surface built on go-chi/chi,
// grounded on other_examples/manifests/ehrlich-b-trade's go-chi/chi +
// go-chi/cors stack. Status-code mapping is driven entirely by
// apperr.Kind, never by string-sniffing error messages.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"fenrir/internal/apperr"
	"fenrir/internal/engine"
	"fenrir/internal/exchange"
	"fenrir/internal/store"
)

type API struct {
	exchange *exchange.Exchange
	engine   *engine.Engine
	store    *store.Store
	log      zerolog.Logger
	depth    int
}

func New(x *exchange.Exchange, e *engine.Engine, s *store.Store, depth int, log zerolog.Logger) *API {
	return &API{exchange: x, engine: e, store: s, log: log, depth: depth}
}

// Router builds the chi mux: admin, public and authenticated trader routes,
// plus /health and /api/version the way original_source/app/main.py exposes
// them alongside its FastAPI routers.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(zerologMiddleware(a.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", a.handleHealth)
	r.Get("/api/version", a.handleVersion)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/companies", a.handleCreateCompany)
		r.Get("/companies", a.handleListCompaniesAdmin)
		r.Post("/accounts", a.handleCreateAccount)
		r.Get("/accounts", a.handleListAccounts)
		r.Post("/reset", a.handleReset)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/companies", a.handleListCompanies)
		r.Get("/companies/{ticker}", a.handleGetCompany)
		r.Get("/orderbook/{ticker}", a.handleOrderBook)
		r.Get("/trades/{ticker}", a.handleTrades)
		r.Get("/market-data/{ticker}", a.handleMarketDataOne)
		r.Get("/market-data", a.handleMarketDataAll)

		r.Group(func(r chi.Router) {
			r.Use(a.authMiddleware)
			r.Get("/account", a.handleGetAccount)
			r.Get("/holdings", a.handleGetHoldings)
			r.Post("/orders", a.handleSubmitOrder)
			r.Get("/orders", a.handleListOrders)
			r.Get("/orders/{id}", a.handleGetOrder)
			r.Delete("/orders/{id}", a.handleCancelOrder)
			r.Get("/portfolio/summary", a.handlePortfolioSummary)
			r.Get("/portfolio/holdings", a.handlePortfolioHoldings)
		})
	})

	return r
}

func zerologMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": "1.0.0"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(apperr.KindOf(err))
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps apperr.Kind to the status classes spec.md §6/§7 name.
func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindInvalidInput, apperr.KindInsufficientResources, apperr.KindIllegalState:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
