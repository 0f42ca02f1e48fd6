package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/ledger"
	"github.com/buildassist/backend/internal/models"
	"github.com/buildassist/backend/internal/payments"
)

// ErrUnknownPlan is returned for a plan id outside the catalog.
var ErrUnknownPlan = errors.New("unknown plan")

// EventStore deduplicates provider events. MarkProcessed records the event
// id and reports whether it was new; Unmark releases it so a transiently
// failed fulfillment can be retried on redelivery.
type EventStore interface {
	MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error)
	Unmark(ctx context.Context, eventID string) error
}

type Service interface {
	CreateCheckout(ctx context.Context, accountID uuid.UUID, planID string) (string, error)
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	provider payments.Provider
	ledger   ledger.Service
	events   EventStore
	log      *slog.Logger
}

func NewService(provider payments.Provider, ledgerSvc ledger.Service, events EventStore, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{provider: provider, ledger: ledgerSvc, events: events, log: log}
}

var _ Service = (*service)(nil)

func (s *service) CreateCheckout(ctx context.Context, accountID uuid.UUID, planID string) (string, error) {
	plan, ok := models.PlanByID(planID)
	if !ok {
		return "", ErrUnknownPlan
	}
	return s.provider.CreateCheckout(ctx, accountID, plan)
}

// HandleEvent applies a confirmed purchase to the ledger exactly once per
// provider event id. The ledger's Credit is not idempotent, so the dedup
// row is claimed before crediting.
func (s *service) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.provider.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}
	if ev == nil {
		return nil
	}

	plan, ok := models.PlanByID(ev.PlanID)
	if !ok {
		s.log.Warn("purchase event references unknown plan", "event_id", ev.EventID, "plan_id", ev.PlanID)
		return ErrUnknownPlan
	}

	fresh, err := s.events.MarkProcessed(ctx, ev.EventID, "checkout.session.completed")
	if err != nil {
		return err
	}
	if !fresh {
		s.log.Info("duplicate purchase event ignored", "event_id", ev.EventID)
		return nil
	}

	balance, err := s.ledger.Credit(ctx, ev.AccountID, plan.Credits, &plan.Tier)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			s.log.Warn("purchase event for missing account", "event_id", ev.EventID, "account_id", ev.AccountID)
			return nil
		}
		// Release the dedup claim so the provider's redelivery can retry.
		if unmarkErr := s.events.Unmark(ctx, ev.EventID); unmarkErr != nil {
			s.log.Error("failed to release event for retry", "event_id", ev.EventID, "error", unmarkErr)
		}
		return err
	}

	s.log.Info("purchase applied",
		"event_id", ev.EventID,
		"account_id", ev.AccountID,
		"plan_id", plan.ID,
		"credits_added", plan.Credits,
		"credits_left", balance.CreditsLeft,
		"tier", balance.SubscriptionTier)
	return nil
}
