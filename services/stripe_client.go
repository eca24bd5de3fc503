package services

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

// PaymentGateway creates payment intents against the external processor.
// The returned client secret is handed to the client to complete payment
// out-of-band.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, orderID string) (clientSecret string, err error)
}

type StripeService struct {
	SecretKey  string
	WebhookKey string
}

func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey}
}

func (s *StripeService) CreateIntent(ctx context.Context, amount int64, currency, orderID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("order_id", orderID)
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

// ParseWebhook verifies the Stripe signature and decodes the event.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
