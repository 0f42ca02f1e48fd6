package cleanup

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/buildassist/backend/internal/storage"
)

// DeleteStoredObjectArgs asks for one remote object to be removed after its
// local document record is already gone. Failures are retried by the queue;
// an object that outlives its retries is an acceptable orphan.
type DeleteStoredObjectArgs struct {
	StorageKey string `json:"storage_key"`
}

func (DeleteStoredObjectArgs) Kind() string { return "delete_stored_object" }

type DeleteStoredObjectWorker struct {
	river.WorkerDefaults[DeleteStoredObjectArgs]
	store storage.ObjectStorage
	log   *slog.Logger
}

func NewDeleteStoredObjectWorker(store storage.ObjectStorage, log *slog.Logger) *DeleteStoredObjectWorker {
	if log == nil {
		log = slog.Default()
	}
	return &DeleteStoredObjectWorker{store: store, log: log}
}

func (w *DeleteStoredObjectWorker) Work(ctx context.Context, job *river.Job[DeleteStoredObjectArgs]) error {
	if err := w.store.Delete(ctx, job.Args.StorageKey); err != nil {
		w.log.Warn("remote object delete failed, will retry",
			"storage_key", job.Args.StorageKey,
			"attempt", job.Attempt,
			"error", err)
		return err
	}
	return nil
}
