package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/models"
)

// ErrAccountNotFound is returned when the referenced account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrInvalidInput is returned when a required field is missing or malformed.
var ErrInvalidInput = errors.New("invalid input")

// Balance is the post-mutation state of the two ledger-owned fields.
type Balance struct {
	CreditsLeft      int    `json:"credits_left"`
	SubscriptionTier string `json:"subscription_tier"`
}

// AccountStore is the minimal store interface the ledger mutates through.
// Every method is a single atomic statement on one account row.
type AccountStore interface {
	DebitCredits(ctx context.Context, id uuid.UUID, amount int) (int, error)
	CreditCredits(ctx context.Context, id uuid.UUID, amount int, tier *string) (Balance, error)
	SetAccountFields(ctx context.Context, id uuid.UUID, credits *int, tier *string) (Balance, error)
}

type Service interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount int) (int, error)
	Credit(ctx context.Context, accountID uuid.UUID, amount int, newTier *string) (Balance, error)
	AdminSet(ctx context.Context, accountID uuid.UUID, credits *int, tier *string) (Balance, error)
}

type service struct {
	store AccountStore
}

func NewService(store AccountStore) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

// Debit clamps at zero: usage can never push an account negative. The clamp
// happens inside the store's atomic update, not here.
func (s *service) Debit(ctx context.Context, accountID uuid.UUID, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrInvalidInput
	}
	return s.store.DebitCredits(ctx, accountID, amount)
}

// Credit is additive and exact, with an optional tier overwrite applied in
// the same statement. It is NOT idempotent per call; duplicate purchase
// events must be suppressed by the caller before invoking it.
func (s *service) Credit(ctx context.Context, accountID uuid.UUID, amount int, newTier *string) (Balance, error) {
	if amount < 0 {
		return Balance{}, ErrInvalidInput
	}
	if newTier != nil && !models.ValidTier(*newTier) {
		return Balance{}, ErrInvalidInput
	}
	return s.store.CreditCredits(ctx, accountID, amount, newTier)
}

// AdminSet overwrites either or both fields directly, no clamping, no
// arithmetic. At least one field must be supplied.
func (s *service) AdminSet(ctx context.Context, accountID uuid.UUID, credits *int, tier *string) (Balance, error) {
	if credits == nil && tier == nil {
		return Balance{}, ErrInvalidInput
	}
	if credits != nil && *credits < 0 {
		return Balance{}, ErrInvalidInput
	}
	if tier != nil && !models.ValidTier(*tier) {
		return Balance{}, ErrInvalidInput
	}
	return s.store.SetAccountFields(ctx, accountID, credits, tier)
}
