package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded file, owned by exactly one account. The bytes
// live in object storage; this record holds the key and metadata. Rows are
// removed when their owner is deleted (FK cascade).
type Document struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	StorageKey   string    `json:"storage_key"`
	URL          string    `json:"url"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}
