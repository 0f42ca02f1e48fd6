package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/buildassist/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mock for AccountStore. Duplicate emails surface the same
// pgconn error code the database would raise.
// ---------------------------------------------------------------------------

type mockAccountStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*models.Account
	byEmail map[string]*models.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		byID:    make(map[uuid.UUID]*models.Account),
		byEmail: make(map[string]*models.Account),
	}
}

func (m *mockAccountStore) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[a.Email]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}
	}
	a.ID = uuid.New()
	m.byID[a.ID] = a
	m.byEmail[a.Email] = a
	return nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

var testSecret = []byte("test-signing-secret")

// ---------------------------------------------------------------------------
// Register / Login
// ---------------------------------------------------------------------------

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMockAccountStore(), testSecret)
	ctx := context.Background()

	acc, token, err := svc.Register(ctx, "ada", "Ada@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" {
		t.Fatal("Register returned empty token")
	}
	if acc.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", acc.Email)
	}
	if acc.SubscriptionTier != models.TierFree {
		t.Errorf("tier: got %q, want %q", acc.SubscriptionTier, models.TierFree)
	}
	if acc.CreditsLeft != models.FreeTierCredits {
		t.Errorf("starting credits: got %d, want %d", acc.CreditsLeft, models.FreeTierCredits)
	}
	if acc.PasswordHash == "hunter22" {
		t.Error("password stored in the clear")
	}

	// Login with a differently-cased email must find the same account.
	got, loginToken, err := svc.Login(ctx, "ADA@example.COM", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != acc.ID {
		t.Errorf("Login returned account %s, want %s", got.ID, acc.ID)
	}
	if loginToken == "" {
		t.Fatal("Login returned empty token")
	}

	id, err := svc.ValidateToken(ctx, loginToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id != acc.ID {
		t.Errorf("token subject: got %s, want %s", id, acc.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore()
	svc := NewService(store, testSecret)
	ctx := context.Background()

	first, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}

	// Same address, different case. Normalization makes it a duplicate.
	_, _, err = svc.Register(ctx, "other", "Ada@Example.com", "different")
	if err != ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got: %v", err)
	}

	// The rejected registration must not have touched the existing account.
	kept, err := store.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail after duplicate attempt: %v", err)
	}
	if kept.ID != first.ID || kept.Username != "ada" {
		t.Errorf("existing account mutated: got id %s username %q", kept.ID, kept.Username)
	}
	if kept.CreditsLeft != models.FreeTierCredits || kept.SubscriptionTier != models.TierFree {
		t.Errorf("existing account balance mutated: %d credits, tier %q", kept.CreditsLeft, kept.SubscriptionTier)
	}
	if bcrypt.CompareHashAndPassword([]byte(kept.PasswordHash), []byte("hunter22")) != nil {
		t.Error("existing account password no longer matches")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewService(newMockAccountStore(), testSecret)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "ada", "ada@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewService(newMockAccountStore(), testSecret)
	// Same error as wrong password; the caller cannot probe which emails exist.
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "pw"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewService(newMockAccountStore(), testSecret)
	if _, err := svc.ValidateToken(context.Background(), "not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	ctx := context.Background()
	store := newMockAccountStore()
	issuer := NewService(store, testSecret)

	_, token, err := issuer.Register(ctx, "ada", "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	verifier := NewService(store, []byte("some-other-secret"))
	if _, err := verifier.ValidateToken(ctx, token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}
