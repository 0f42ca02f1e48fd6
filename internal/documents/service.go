package documents

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/buildassist/backend/internal/cleanup"
	"github.com/buildassist/backend/internal/models"
	"github.com/buildassist/backend/internal/storage"
)

// ErrNotFound is returned when the referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrForbidden is returned when the caller does not own the document.
var ErrForbidden = errors.New("document not owned by caller")

// ErrOwnerNotFound is returned when uploading for an account that does not exist.
var ErrOwnerNotFound = errors.New("owner account not found")

// DocumentStore is the persistence interface for document records.
type DocumentStore interface {
	Insert(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EnqueueCleanupFunc schedules a best-effort remote object deletion.
// Provided by main as a closure over river.Client.Insert.
type EnqueueCleanupFunc func(ctx context.Context, args cleanup.DeleteStoredObjectArgs) error

type Service interface {
	Upload(ctx context.Context, accountID uuid.UUID, data []byte, originalName, mimeType string) (*models.Document, error)
	List(ctx context.Context, accountID uuid.UUID) ([]*models.Document, error)
	Delete(ctx context.Context, accountID, docID uuid.UUID) error
}

type service struct {
	store          DocumentStore
	objects        storage.ObjectStorage
	enqueueCleanup EnqueueCleanupFunc
	log            *slog.Logger
}

func NewService(store DocumentStore, objects storage.ObjectStorage, enqueueCleanup EnqueueCleanupFunc, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, objects: objects, enqueueCleanup: enqueueCleanup, log: log}
}

var _ Service = (*service)(nil)

// Upload stores the bytes remotely first, then records the document. If the
// owner vanished in between, the FK insert fails and the fresh remote
// object is scheduled for removal.
func (s *service) Upload(ctx context.Context, accountID uuid.UUID, data []byte, originalName, mimeType string) (*models.Document, error) {
	obj, err := s.objects.Put(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		AccountID:    accountID,
		StorageKey:   obj.Key,
		URL:          obj.URL,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    obj.SizeBytes,
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		s.scheduleRemoteDelete(ctx, obj.Key)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID) ([]*models.Document, error) {
	return s.store.ListByAccountID(ctx, accountID)
}

// Delete removes the local record, then schedules the remote delete. The
// remote side is best effort: an orphaned object is recoverable, a stuck
// local record is not.
func (s *service) Delete(ctx context.Context, accountID, docID uuid.UUID) error {
	doc, err := s.store.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.AccountID != accountID {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, docID); err != nil {
		return err
	}
	s.scheduleRemoteDelete(ctx, doc.StorageKey)
	return nil
}

func (s *service) scheduleRemoteDelete(ctx context.Context, key string) {
	if err := s.enqueueCleanup(ctx, cleanup.DeleteStoredObjectArgs{StorageKey: key}); err != nil {
		s.log.Warn("failed to schedule remote object cleanup", "storage_key", key, "error", err)
	}
}
