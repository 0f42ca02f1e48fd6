package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mock for AccountStore. Mirrors the repository's atomic-update
// semantics (clamp on debit, COALESCE on overwrite) so the real service
// logic is exercised without a database.
// ---------------------------------------------------------------------------

type mockAccountStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]*Balance
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{balances: make(map[uuid.UUID]*Balance)}
}

func (m *mockAccountStore) add(id uuid.UUID, credits int, tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[id] = &Balance{CreditsLeft: credits, SubscriptionTier: tier}
}

func (m *mockAccountStore) DebitCredits(_ context.Context, id uuid.UUID, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	b.CreditsLeft -= amount
	if b.CreditsLeft < 0 {
		b.CreditsLeft = 0
	}
	return b.CreditsLeft, nil
}

func (m *mockAccountStore) CreditCredits(_ context.Context, id uuid.UUID, amount int, tier *string) (Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return Balance{}, ErrAccountNotFound
	}
	b.CreditsLeft += amount
	if tier != nil {
		b.SubscriptionTier = *tier
	}
	return *b, nil
}

func (m *mockAccountStore) SetAccountFields(_ context.Context, id uuid.UUID, credits *int, tier *string) (Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return Balance{}, ErrAccountNotFound
	}
	if credits != nil {
		b.CreditsLeft = *credits
	}
	if tier != nil {
		b.SubscriptionTier = *tier
	}
	return *b, nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// ---------------------------------------------------------------------------
// Debit
// ---------------------------------------------------------------------------

func TestDebit_ClampsAtZero(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 30, models.TierFree)
	svc := NewService(store)

	balance, err := svc.Debit(context.Background(), id, 1_000_000)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance after oversized debit: got %d, want 0", balance)
	}
}

func TestDebit_ReturnsNewBalance(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 30, models.TierFree)
	svc := NewService(store)

	balance, err := svc.Debit(context.Background(), id, 12)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if balance != 18 {
		t.Errorf("balance: got %d, want 18", balance)
	}
}

func TestDebit_NegativeAmount(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 30, models.TierFree)
	svc := NewService(store)

	if _, err := svc.Debit(context.Background(), id, -5); err != ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestDebit_AccountNotFound(t *testing.T) {
	svc := NewService(newMockAccountStore())
	if _, err := svc.Debit(context.Background(), uuid.New(), 5); err != ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Credit
// ---------------------------------------------------------------------------

func TestCredit_ExactAdditive(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 0, models.TierFree)
	svc := NewService(store)

	b, err := svc.Credit(context.Background(), id, 270, nil)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if b.CreditsLeft != 270 {
		t.Errorf("balance after credit from zero: got %d, want 270", b.CreditsLeft)
	}

	b, err = svc.Credit(context.Background(), id, 50, nil)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if b.CreditsLeft != 320 {
		t.Errorf("balance after second credit: got %d, want 320", b.CreditsLeft)
	}
	if b.SubscriptionTier != models.TierFree {
		t.Errorf("tier should be untouched when not supplied, got %q", b.SubscriptionTier)
	}
}

func TestCredit_TierOverwrite(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 10, models.TierBestValue)
	svc := NewService(store)

	// Tier is always overwritten with the purchased plan's tier, even when
	// the account already holds a "better" one.
	b, err := svc.Credit(context.Background(), id, 50, strPtr(models.TierStarter))
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if b.SubscriptionTier != models.TierStarter {
		t.Errorf("tier: got %q, want %q", b.SubscriptionTier, models.TierStarter)
	}
}

func TestCredit_InvalidTier(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 10, models.TierFree)
	svc := NewService(store)

	if _, err := svc.Credit(context.Background(), id, 50, strPtr("platinum")); err != ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for unknown tier, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// AdminSet
// ---------------------------------------------------------------------------

func TestAdminSet_RequiresAtLeastOneField(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 10, models.TierFree)
	svc := NewService(store)

	if _, err := svc.AdminSet(context.Background(), id, nil, nil); err != ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestAdminSet_PartialOverwrite(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 10, models.TierStarter)
	svc := NewService(store)

	b, err := svc.AdminSet(context.Background(), id, intPtr(0), nil)
	if err != nil {
		t.Fatalf("AdminSet credits only: %v", err)
	}
	if b.CreditsLeft != 0 || b.SubscriptionTier != models.TierStarter {
		t.Errorf("got %+v, want credits 0 and tier starter", b)
	}

	b, err = svc.AdminSet(context.Background(), id, nil, strPtr(models.TierBestValue))
	if err != nil {
		t.Fatalf("AdminSet tier only: %v", err)
	}
	if b.CreditsLeft != 0 || b.SubscriptionTier != models.TierBestValue {
		t.Errorf("got %+v, want credits 0 and tier best-value", b)
	}
}

func TestAdminSet_RejectsNegativeCredits(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, 10, models.TierFree)
	svc := NewService(store)

	if _, err := svc.AdminSet(context.Background(), id, intPtr(-1), nil); err != ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Full scenario: new free account through purchase and admin correction.
// ---------------------------------------------------------------------------

func TestLedgerScenario(t *testing.T) {
	id := uuid.New()
	store := newMockAccountStore()
	store.add(id, models.FreeTierCredits, models.TierFree)
	svc := NewService(store)
	ctx := context.Background()

	balance, err := svc.Debit(ctx, id, 20)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if balance != 0 {
		t.Fatalf("after debit 20 from 15: got %d, want 0", balance)
	}

	b, err := svc.Credit(ctx, id, 50, strPtr(models.TierStarter))
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if b.CreditsLeft != 50 || b.SubscriptionTier != models.TierStarter {
		t.Fatalf("after credit: got %+v, want 50/starter", b)
	}

	b, err = svc.AdminSet(ctx, id, intPtr(1000), nil)
	if err != nil {
		t.Fatalf("AdminSet: %v", err)
	}
	if b.CreditsLeft != 1000 {
		t.Errorf("after admin set: got %d, want 1000", b.CreditsLeft)
	}
	if b.SubscriptionTier != models.TierStarter {
		t.Errorf("tier should stay starter, got %q", b.SubscriptionTier)
	}
}
