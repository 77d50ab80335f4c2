package httpapi

import (
	"context"
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/sha3"

	"fenrir/internal/apperr"
)

type ctxKey int

const accountIDKey ctxKey = iota

// Digest returns the 64-char hex SHA3-256 digest of an API key, the
// "opaque 64-char hex" credential digest spec.md §3 requires. Grounded on
// other_examples/manifests/ehrlich-b-trade's golang.org/x/crypto dependency.
func Digest(apiKey string) string {
	sum := sha3.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

// authMiddleware resolves X-API-Key to an account id via its digest
// (spec.md §6 "Authenticated" routes) and stores it in the request context.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			writeError(w, apperr.New(apperr.KindUnauthorized, "missing X-API-Key"))
			return
		}

		ctx := r.Context()
		tx, err := a.store.Begin(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		acc, err := tx.GetAccountByAPIKeyDigest(Digest(key))
		_ = tx.Rollback()
		if err != nil {
			writeError(w, err)
			return
		}

		r = r.WithContext(context.WithValue(ctx, accountIDKey, acc.ID))
		next.ServeHTTP(w, r)
	})
}

func accountIDFrom(r *http.Request) string {
	v, _ := r.Context().Value(accountIDKey).(string)
	return v
}
