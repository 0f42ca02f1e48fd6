package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/models"
)

// ErrAccountNotFound is returned when the referenced account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// Snapshot is the full chat buffer of one account at a point in time.
// UpdatedAt is nil if the buffer was never written.
type Snapshot struct {
	UpdatedAt *time.Time       `json:"updated_at"`
	Messages  []models.Message `json:"messages"`
}

// IncomingMessage is the caller-supplied half of a message. Role is never
// accepted from the caller; CreatedAt defaults to the time of the call.
type IncomingMessage struct {
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at"`
}

// ChatStore is the minimal store interface for the chat buffer. Append is a
// single atomic append-with-bounded-retention on one account row.
type ChatStore interface {
	AppendMessages(ctx context.Context, id uuid.UUID, msgs []models.Message) (Snapshot, error)
	GetChat(ctx context.Context, id uuid.UUID) (Snapshot, error)
}

type Service interface {
	AppendPair(ctx context.Context, accountID uuid.UUID, user, assistant IncomingMessage) (Snapshot, error)
	ReadLast(ctx context.Context, accountID uuid.UUID) (Snapshot, error)
}

type service struct {
	store ChatStore
}

func NewService(store ChatStore) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

func normalizeMessage(in IncomingMessage, role string) models.Message {
	createdAt := time.Now().UTC()
	if in.CreatedAt != nil {
		createdAt = in.CreatedAt.UTC()
	}
	return models.Message{
		Role:      role,
		Content:   strings.TrimSpace(in.Content),
		CreatedAt: createdAt,
	}
}

// sortChronological orders messages oldest first. Ties keep their relative
// order, so a pair appended with identical timestamps stays user-then-assistant.
func sortChronological(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// AppendPair pushes the user and assistant halves of one exchange into the
// account's buffer and trims it to the most recent entries, oldest first out.
func (s *service) AppendPair(ctx context.Context, accountID uuid.UUID, user, assistant IncomingMessage) (Snapshot, error) {
	pair := []models.Message{
		normalizeMessage(user, models.RoleUser),
		normalizeMessage(assistant, models.RoleAssistant),
	}
	snap, err := s.store.AppendMessages(ctx, accountID, pair)
	if err != nil {
		return Snapshot{}, err
	}
	sortChronological(snap.Messages)
	return snap, nil
}

// ReadLast returns the buffer sorted ascending by createdAt. Read-only.
func (s *service) ReadLast(ctx context.Context, accountID uuid.UUID) (Snapshot, error) {
	snap, err := s.store.GetChat(ctx, accountID)
	if err != nil {
		return Snapshot{}, err
	}
	sortChronological(snap.Messages)
	return snap, nil
}
