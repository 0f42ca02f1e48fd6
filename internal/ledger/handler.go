package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// DebitRequest uses a pointer for Amount so "amount missing" and
// "amount: 0" are distinguishable.
type DebitRequest struct {
	AccountID string `json:"account_id"`
	Amount    *int   `json:"amount"`
}

type DebitResponse struct {
	CreditsLeft int `json:"credits_left"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Debit handles PUT /api/v1/credits/debit. It is the usage-event entry
// point, called service-to-service under the operator key.
func (h *Handler) Debit(w http.ResponseWriter, r *http.Request) {
	var req DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.Amount == nil {
		http.Error(w, `{"error":"account_id and amount are required"}`, http.StatusBadRequest)
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		http.Error(w, `{"error":"invalid account_id"}`, http.StatusBadRequest)
		return
	}

	balance, err := h.svc.Debit(r.Context(), accountID, *req.Amount)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, `{"error":"invalid amount"}`, http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("debit failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(DebitResponse{CreditsLeft: balance})
}
