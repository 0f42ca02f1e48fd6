package documents

import (
	"context"
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

var _ DocumentStore = (*Repository)(nil)

func (r *Repository) Insert(ctx context.Context, d *models.Document) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO documents (account_id, storage_key, url, original_name, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, d.AccountID, d.StorageKey, d.URL, d.OriginalName, d.MimeType, d.SizeBytes).Scan(&d.ID, &d.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var d models.Document
	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, storage_key, url, original_name, mime_type, size_bytes, created_at
		FROM documents WHERE id = $1
	`, id).Scan(&d.ID, &d.AccountID, &d.StorageKey, &d.URL, &d.OriginalName, &d.MimeType, &d.SizeBytes, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, storage_key, url, original_name, mime_type, size_bytes, created_at
		FROM documents WHERE account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.AccountID, &d.StorageKey, &d.URL, &d.OriginalName, &d.MimeType, &d.SizeBytes, &d.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
