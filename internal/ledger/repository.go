package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ AccountStore = (*Repository)(nil)

// DebitCredits atomically subtracts amount, clamping at zero, and returns
// the new balance.
func (r *Repository) DebitCredits(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET credits_left = GREATEST(0, credits_left - $1), updated_at = now()
		WHERE id = $2
		RETURNING credits_left
	`, amount, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// CreditCredits atomically adds amount and, when tier is non-nil, overwrites
// subscription_tier in the same statement.
func (r *Repository) CreditCredits(ctx context.Context, id uuid.UUID, amount int, tier *string) (Balance, error) {
	var b Balance
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET credits_left = credits_left + $1,
		    subscription_tier = COALESCE($2, subscription_tier),
		    updated_at = now()
		WHERE id = $3
		RETURNING credits_left, subscription_tier
	`, amount, tier, id).Scan(&b.CreditsLeft, &b.SubscriptionTier)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrAccountNotFound
	}
	return b, err
}

// GetCreditsLeft reads the current balance. Used by the credits gate
// middleware, not by ledger operations.
func (r *Repository) GetCreditsLeft(ctx context.Context, id uuid.UUID) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		SELECT credits_left FROM accounts WHERE id = $1
	`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// SetAccountFields overwrites whichever of the two fields is non-nil.
func (r *Repository) SetAccountFields(ctx context.Context, id uuid.UUID, credits *int, tier *string) (Balance, error) {
	var b Balance
	err := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET credits_left = COALESCE($1, credits_left),
		    subscription_tier = COALESCE($2, subscription_tier),
		    updated_at = now()
		WHERE id = $3
		RETURNING credits_left, subscription_tier
	`, credits, tier, id).Scan(&b.CreditsLeft, &b.SubscriptionTier)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrAccountNotFound
	}
	return b, err
}
