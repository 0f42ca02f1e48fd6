package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/buildassist/backend/internal/models"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrBadMetadata is returned when a verified event lacks the account/plan projection.
var ErrBadMetadata = errors.New("missing account or plan metadata")

// PurchaseEvent is the {accountId, planId} projection of a confirmed
// purchase. Anything provider-specific stays inside this package.
type PurchaseEvent struct {
	EventID   string
	AccountID uuid.UUID
	PlanID    string
}

// Provider is the external payment collaborator.
type Provider interface {
	// CreateCheckout returns a hosted checkout URL for the given plan.
	CreateCheckout(ctx context.Context, accountID uuid.UUID, plan models.Plan) (string, error)
	// VerifyEvent authenticates a raw webhook delivery. It returns
	// (nil, nil) for genuine events that are not purchase completions.
	VerifyEvent(payload []byte, signature string) (*PurchaseEvent, error)
}

// StripeProvider implements Provider against Stripe Checkout.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

var _ Provider = (*StripeProvider)(nil)

func NewStripeProvider(secretKey, webhookSecret, clientURL string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{
		api:           api,
		webhookSecret: webhookSecret,
		successURL:    clientURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     clientURL + "/subscribe",
	}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, accountID uuid.UUID, plan models.Plan) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d Credits Pack", plan.Credits)),
					},
					UnitAmount: stripe.Int64(plan.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("account_id", accountID.String())
	params.AddMetadata("plan_id", plan.ID)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (p *StripeProvider) VerifyEvent(payload []byte, signature string) (*PurchaseEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	planID := sess.Metadata["plan_id"]
	accountID, err := uuid.Parse(sess.Metadata["account_id"])
	if err != nil || planID == "" {
		return nil, ErrBadMetadata
	}
	return &PurchaseEvent{
		EventID:   event.ID,
		AccountID: accountID,
		PlanID:    planID,
	}, nil
}
