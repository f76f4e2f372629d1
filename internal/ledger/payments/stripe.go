package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentlink"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe implements Processor with stripe-go.
type Stripe struct {
	WebhookSecret string
}

// NewStripe sets the process-wide Stripe key and returns the adapter.
func NewStripe(secretKey, webhookSecret string) *Stripe {
	stripe.Key = secretKey
	return &Stripe{WebhookSecret: webhookSecret}
}

func (s *Stripe) CreateCustomer(ctx context.Context, userID, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: map[string]string{MetaUserID: userID},
	}
	params.Context = ctx

	cust, err := customerpkg.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	mode := stripe.CheckoutSessionModePayment
	if req.Plan.Subscription() {
		mode = stripe.CheckoutSessionModeSubscription
	}

	meta := req.Metadata.Map()
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(req.CustomerID),
		ClientReferenceID: stripe.String(req.Metadata.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(quantity)},
		},
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   meta,
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) RetrieveSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := checkoutsession.Get(id, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Code == stripe.ErrorCodeResourceMissing {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return toSession(sess), nil
}

func (s *Stripe) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (PaymentLink, error) {
	// Payment links need a price; each deposit gets its own one-off price.
	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(req.Currency),
		UnitAmount: stripe.Int64(req.AmountCents),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(req.ProductName),
		},
	}
	priceParams.Context = ctx

	pr, err := price.New(priceParams)
	if err != nil {
		return PaymentLink{}, fmt.Errorf("create deposit price: %w", err)
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(pr.ID), Quantity: stripe.Int64(1)},
		},
		Metadata: req.Metadata.Map(),
	}
	linkParams.Context = ctx

	link, err := paymentlink.New(linkParams)
	if err != nil {
		return PaymentLink{}, fmt.Errorf("create payment link: %w", err)
	}
	return PaymentLink{ID: link.ID, URL: link.URL}, nil
}

func (s *Stripe) DeactivatePaymentLink(ctx context.Context, id string) error {
	params := &stripe.PaymentLinkParams{Active: stripe.Bool(false)}
	params.Context = ctx

	if _, err := paymentlink.Update(id, params); err != nil {
		return fmt.Errorf("deactivate payment link %s: %w", id, err)
	}
	return nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := Event{ID: event.ID, Type: string(event.Type)}
	if event.Type == stripe.EventTypeCheckoutSessionCompleted {
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		sess := toSession(&cs)
		out.Session = &sess
	}
	return out, nil
}

func toSession(cs *stripe.CheckoutSession) Session {
	out := Session{
		ID:       cs.ID,
		Paid:     cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid || cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired,
		Metadata: cs.Metadata,
	}
	if cs.Customer != nil {
		out.CustomerID = cs.Customer.ID
	}
	if cs.PaymentLink != nil {
		out.PaymentLinkID = cs.PaymentLink.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}
