package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"fenrir/internal/apperr"
	"fenrir/internal/domain"
	"fenrir/internal/money"
)

// Admin routes carry no auth in scope (spec.md §6): deployment is expected
// to gate /admin at the network layer, mirroring
// original_source/app/routers/admin.py, which relies on its own deployment
// perimeter rather than an in-app check.

type createCompanyRequest struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	TotalShares int64  `json:"total_shares"`
	FloatShares int64  `json:"float_shares"`
}

type companyResponse struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	TotalShares int64  `json:"total_shares"`
	FloatShares int64  `json:"float_shares"`
}

func toCompanyResponse(c domain.Company) companyResponse {
	return companyResponse{Ticker: c.Ticker, Name: c.Name, TotalShares: c.TotalShares, FloatShares: c.FloatShares}
}

func (a *API) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.KindInvalidInput, err, "malformed body"))
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" || req.Name == "" {
		writeError(w, apperr.New(apperr.KindInvalidInput, "ticker and name are required"))
		return
	}
	if req.TotalShares <= 0 || req.FloatShares < 0 || req.FloatShares > req.TotalShares {
		writeError(w, apperr.New(apperr.KindInvalidInput, "invalid total/float shares"))
		return
	}

	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	c := domain.Company{Ticker: ticker, Name: req.Name, TotalShares: req.TotalShares, FloatShares: req.FloatShares}
	if err := tx.CreateCompany(c); err != nil {
		writeError(w, err)
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompanyResponse(c))
}

func (a *API) handleListCompaniesAdmin(w http.ResponseWriter, r *http.Request) {
	a.handleListCompanies(w, r)
}

type createAccountRequest struct {
	AccountID    string  `json:"account_id"`
	InitialCash  *string `json:"initial_cash"`
}

type createAccountResponse struct {
	AccountID   string `json:"account_id"`
	CashBalance string `json:"cash_balance"`
	APIKey      string `json:"api_key"`
	CreatedAt   string `json:"created_at"`
}

func (a *API) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, apperr.Wrap(apperr.KindInvalidInput, err, "malformed body"))
		return
	}
	if req.AccountID == "" {
		writeError(w, apperr.New(apperr.KindInvalidInput, "account_id is required"))
		return
	}

	cash := money.Zero
	if req.InitialCash != nil {
		parsed, err := parseMoney(*req.InitialCash)
		if err != nil {
			writeError(w, apperr.New(apperr.KindInvalidInput, "invalid initial_cash"))
			return
		}
		cash = parsed
	}

	apiKey := uuid.NewString()
	acc := domain.Account{
		ID:           req.AccountID,
		APIKeyDigest: Digest(apiKey),
		CashBalance:  cash,
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	if err := tx.CreateAccount(acc); err != nil {
		writeError(w, err)
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createAccountResponse{
		AccountID:   acc.ID,
		CashBalance: acc.CashBalance.StringFixed(2),
		APIKey:      apiKey,
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
	})
}

type accountResponse struct {
	AccountID   string `json:"account_id"`
	CashBalance string `json:"cash_balance"`
	CreatedAt   string `json:"created_at"`
}

func (a *API) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	tx, err := a.store.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer tx.Rollback()

	accs, err := tx.ListAccounts()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accs))
	for _, acc := range accs {
		out = append(out, accountResponse{
			AccountID:   acc.ID,
			CashBalance: acc.CashBalance.StringFixed(2),
			CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReset clears and recreates all tables (spec.md §6 POST /admin/reset).
func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
