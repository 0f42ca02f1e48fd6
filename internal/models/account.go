package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tiers. A tier is a label granted by a purchase, not a
// billing-cycle construct.
const (
	TierFree        = "free"
	TierStarter     = "starter"
	TierMostPopular = "most-popular"
	TierBestValue   = "best-value"
)

// FreeTierCredits is the allotment granted at registration.
const FreeTierCredits = 15

// ChatBufferSize is the capacity of the per-account rolling chat window.
const ChatBufferSize = 10

// ValidTier reports whether t is a known subscription tier.
func ValidTier(t string) bool {
	switch t {
	case TierFree, TierStarter, TierMostPopular, TierBestValue:
		return true
	}
	return false
}

// Message roles. Messages exist only as elements of an account's chat buffer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatState is the embedded rolling buffer of the most recent exchange.
// UpdatedAt is nil until the first append.
type ChatState struct {
	UpdatedAt *time.Time `json:"updated_at"`
	Last      []Message  `json:"last"`
}

type Account struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreditsLeft      int       `json:"credits_left"`
	Chat             ChatState `json:"chat"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
