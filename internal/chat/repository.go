package chat

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buildassist/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ ChatStore = (*Repository)(nil)

// AppendMessages appends msgs to the account's chat buffer and keeps only
// the trailing entries, all in one UPDATE. Concurrent appends to the same
// account serialize on the row; no partial state is ever visible.
func (r *Repository) AppendMessages(ctx context.Context, id uuid.UUID, msgs []models.Message) (Snapshot, error) {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return Snapshot{}, err
	}

	var raw []byte
	var snap Snapshot
	err = r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET chat_last = (
		        SELECT COALESCE(jsonb_agg(msg ORDER BY ord), '[]'::jsonb)
		        FROM (
		            SELECT msg, ord
		            FROM jsonb_array_elements(accounts.chat_last || $2::jsonb)
		                 WITH ORDINALITY AS t(msg, ord)
		            ORDER BY ord DESC
		            LIMIT $3
		        ) tail
		    ),
		    chat_updated_at = now(),
		    updated_at = now()
		WHERE id = $1
		RETURNING chat_last, chat_updated_at
	`, id, payload, models.ChatBufferSize).Scan(&raw, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrAccountNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal(raw, &snap.Messages); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// GetChat reads the buffer and its update time without side effects.
func (r *Repository) GetChat(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	var raw []byte
	var snap Snapshot
	err := r.pool.QueryRow(ctx, `
		SELECT chat_last, chat_updated_at FROM accounts WHERE id = $1
	`, id).Scan(&raw, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrAccountNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal(raw, &snap.Messages); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
