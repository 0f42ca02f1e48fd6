package documents

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/middleware"
	"github.com/buildassist/backend/internal/models"
)

// maxUploadBytes bounds the in-memory buffer for a single upload.
const maxUploadBytes = 10 << 20

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

// Upload handles POST /api/v1/documents with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"no file uploaded"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, `{"error":"failed to read file"}`, http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, `{"error":"file too large"}`, http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc, err := h.svc.Upload(r.Context(), accountID, data, header.Filename, mimeType)
	switch {
	case errors.Is(err, ErrOwnerNotFound):
		http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("document upload failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"upload failed"}`, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/v1/documents, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	docs, err := h.svc.List(r.Context(), accountID)
	if err != nil {
		h.log.Error("list documents failed", "account_id", accountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Delete handles DELETE /api/v1/documents/{id}. Owner only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	docID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid document id"}`, http.StatusBadRequest)
		return
	}

	err = h.svc.Delete(r.Context(), accountID, docID)
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error":"document not found"}`, http.StatusNotFound)
		return
	case errors.Is(err, ErrForbidden):
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	case err != nil:
		h.log.Error("document delete failed", "document_id", docID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
