package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/cleanup"
	"github.com/buildassist/backend/internal/ledger"
	"github.com/buildassist/backend/internal/models"
)

// AccountAdminStore is the persistence interface for operator actions.
type AccountAdminStore interface {
	List(ctx context.Context) ([]*models.Account, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) ([]string, error)
}

// EnqueueCleanupFunc schedules a best-effort remote object deletion.
type EnqueueCleanupFunc func(ctx context.Context, args cleanup.DeleteStoredObjectArgs) error

type UpdateAccountRequest struct {
	CreditsLeft      *int    `json:"credits_left"`
	SubscriptionTier *string `json:"subscription_tier"`
}

type Handler struct {
	store          AccountAdminStore
	ledger         ledger.Service
	enqueueCleanup EnqueueCleanupFunc
	log            *slog.Logger
}

func NewHandler(store AccountAdminStore, ledgerSvc ledger.Service, enqueueCleanup EnqueueCleanupFunc, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, ledger: ledgerSvc, enqueueCleanup: enqueueCleanup, log: log}
}

// ListAccounts handles GET /api/v1/admin/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error("list accounts failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []*models.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

// UpdateAccount handles PATCH /api/v1/admin/accounts/{id}: a direct
// overwrite of credits and/or tier, no arithmetic.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid account id"}`, http.StatusBadRequest)
		return
	}
	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	balance, err := h.ledger.AdminSet(r.Context(), accountID, req.CreditsLeft, req.SubscriptionTier)
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		http.Error(w, `{"error":"provide credits_left and/or a valid subscription_tier"}`, http.StatusBadRequest)
		return
	case errors.Is(err, ledger.ErrAccountNotFound):
		http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("admin update failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// DeleteAccount handles DELETE /api/v1/admin/accounts/{id}. Document rows
// go with the account; their stored objects are cleaned up out-of-band.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid account id"}`, http.StatusBadRequest)
		return
	}

	keys, err := h.store.DeleteCascade(r.Context(), accountID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("delete account failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	for _, key := range keys {
		if err := h.enqueueCleanup(r.Context(), cleanup.DeleteStoredObjectArgs{StorageKey: key}); err != nil {
			h.log.Warn("failed to schedule remote object cleanup", "storage_key", key, "error", err)
		}
	}

	h.log.Info("account deleted", "account_id", accountID, "documents_removed", len(keys))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
