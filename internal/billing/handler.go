package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/buildassist/backend/internal/middleware"
	"github.com/buildassist/backend/internal/payments"
)

// maxWebhookBytes bounds the raw payload read for signature verification.
const maxWebhookBytes = 1 << 20

type CheckoutRequest struct {
	PlanID string `json:"plan_id"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
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

// CreateCheckout handles POST /api/v1/billing/checkout.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	url, err := h.svc.CreateCheckout(r.Context(), accountID, req.PlanID)
	switch {
	case errors.Is(err, ErrUnknownPlan):
		http.Error(w, `{"error":"invalid plan id"}`, http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("create checkout session failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"failed to create session"}`, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(CheckoutResponse{URL: url})
}

// Webhook handles POST /api/v1/billing/webhook. The body must stay raw for
// signature verification, so this route is never wrapped in JSON decoding.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
		return
	}
	signature := r.Header.Get("Stripe-Signature")

	err = h.svc.HandleEvent(r.Context(), payload, signature)
	switch {
	case errors.Is(err, payments.ErrInvalidSignature),
		errors.Is(err, payments.ErrBadMetadata),
		errors.Is(err, ErrUnknownPlan):
		http.Error(w, `{"error":"invalid webhook payload"}`, http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("webhook processing failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}
