package billing

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ EventStore = (*Repository)(nil)

// MarkProcessed claims an event id. The insert is the atomic check: zero
// rows affected means another delivery got there first.
func (r *Repository) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO stripe_events (id, event_type) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) Unmark(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM stripe_events WHERE id = $1", eventID)
	return err
}
