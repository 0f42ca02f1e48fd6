package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/buildassist/backend/internal/middleware"
	"github.com/buildassist/backend/internal/models"
)

type AppendRequest struct {
	UserMessage      IncomingMessage `json:"user_message"`
	AssistantMessage IncomingMessage `json:"assistant_message"`
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

// ReadLast handles GET /api/v1/chat/last.
func (h *Handler) ReadLast(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	snap, err := h.svc.ReadLast(r.Context(), accountID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("read chat failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeSnapshot(w, snap)
}

// AppendPair handles POST /api/v1/chat/append. The request carries the
// latest user and assistant contents; roles are assigned server-side.
func (h *Handler) AppendPair(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	snap, err := h.svc.AppendPair(r.Context(), accountID, req.UserMessage, req.AssistantMessage)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("append chat pair failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeSnapshot(w, snap)
}

func writeSnapshot(w http.ResponseWriter, snap Snapshot) {
	if snap.Messages == nil {
		snap.Messages = []models.Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}
