package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/ledger"
)

// BalanceLookup reads an account's remaining credits.
type BalanceLookup interface {
	GetCreditsLeft(ctx context.Context, id uuid.UUID) (int, error)
}

// RequireCredits rejects paid-feature requests from accounts that have run
// out of credits. It runs after RequireAuth; the actual debit happens
// elsewhere, this is only the gate.
func RequireCredits(balances BalanceLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := AccountIDFromCtx(r.Context())
			if !ok {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			left, err := balances.GetCreditsLeft(r.Context(), accountID)
			if errors.Is(err, ledger.ErrAccountNotFound) {
				http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if left <= 0 {
				http.Error(w, `{"error":"no credits left"}`, http.StatusPaymentRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
