package router

import (
	"encoding/json"
	"net/http"

	"github.com/buildassist/backend/internal/admin"
	"github.com/buildassist/backend/internal/auth"
	"github.com/buildassist/backend/internal/billing"
	"github.com/buildassist/backend/internal/chat"
	"github.com/buildassist/backend/internal/documents"
	"github.com/buildassist/backend/internal/ledger"
	"github.com/buildassist/backend/internal/middleware"
)

// Deps collects everything the router wires together.
type Deps struct {
	Auth      *auth.Handler
	Chat      *chat.Handler
	Documents *documents.Handler
	Billing   *billing.Handler
	Ledger    *ledger.Handler
	Admin     *admin.Handler

	Tokens   middleware.TokenValidator
	Balances middleware.BalanceLookup
	AdminKey string
}

// New returns the API handler. The webhook route is registered without any
// body-consuming middleware: signature verification needs the raw bytes.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	requireAuth := middleware.RequireAuth(d.Tokens)
	requireCredits := middleware.RequireCredits(d.Balances)
	adminOnly := middleware.AdminAuth(d.AdminKey)

	mux.HandleFunc("GET "+base+"/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Auth
	mux.Handle("POST "+base+"/auth/register", http.HandlerFunc(d.Auth.Register))
	mux.Handle("POST "+base+"/auth/login", http.HandlerFunc(d.Auth.Login))
	mux.Handle("POST "+base+"/auth/logout", requireAuth(http.HandlerFunc(d.Auth.Logout)))
	mux.Handle("GET "+base+"/auth/me", requireAuth(http.HandlerFunc(d.Auth.Me)))

	// Chat buffer. Append is a paid feature, gated on remaining credits.
	mux.Handle("GET "+base+"/chat/last", requireAuth(http.HandlerFunc(d.Chat.ReadLast)))
	mux.Handle("POST "+base+"/chat/append", requireAuth(requireCredits(http.HandlerFunc(d.Chat.AppendPair))))

	// Documents
	mux.Handle("POST "+base+"/documents", requireAuth(http.HandlerFunc(d.Documents.Upload)))
	mux.Handle("GET "+base+"/documents", requireAuth(http.HandlerFunc(d.Documents.List)))
	mux.Handle("DELETE "+base+"/documents/{id}", requireAuth(http.HandlerFunc(d.Documents.Delete)))

	// Billing
	mux.Handle("POST "+base+"/billing/checkout", requireAuth(http.HandlerFunc(d.Billing.CreateCheckout)))
	mux.Handle("POST "+base+"/billing/webhook", http.HandlerFunc(d.Billing.Webhook))

	// Operator endpoints
	mux.Handle("PUT "+base+"/credits/debit", adminOnly(http.HandlerFunc(d.Ledger.Debit)))
	mux.Handle("GET "+base+"/admin/accounts", adminOnly(http.HandlerFunc(d.Admin.ListAccounts)))
	mux.Handle("PATCH "+base+"/admin/accounts/{id}", adminOnly(http.HandlerFunc(d.Admin.UpdateAccount)))
	mux.Handle("DELETE "+base+"/admin/accounts/{id}", adminOnly(http.HandlerFunc(d.Admin.DeleteAccount)))

	return mux
}
