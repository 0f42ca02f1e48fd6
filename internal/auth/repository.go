package auth

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

var _ AccountStore = (*Repository)(nil)

// Create inserts a new account. The unique index on email makes a duplicate
// registration fail without touching the existing row.
func (r *Repository) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, subscription_tier, credits_left)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, a.Username, a.Email, a.PasswordHash, a.SubscriptionTier, a.CreditsLeft).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByEmail returns the account for login. The chat buffer is not loaded;
// login only needs identity and balance fields.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, subscription_tier, credits_left, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.SubscriptionTier, &a.CreditsLeft, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns the full account including its chat buffer.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	var chatRaw []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, subscription_tier, credits_left, chat_last, chat_updated_at, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.SubscriptionTier, &a.CreditsLeft, &chatRaw, &a.Chat.UpdatedAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(chatRaw, &a.Chat.Last); err != nil {
		return nil, err
	}
	return &a, nil
}
