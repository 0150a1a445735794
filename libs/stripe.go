package libs

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type StripeGateway struct{}

func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key not configured")
	}
	stripe.Key = secretKey
	return &StripeGateway{}, nil
}

// CreatePaymentIntent expects the amount already in the currency's smallest unit.
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency, email string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(amount),
		Currency:     stripe.String(strings.ToLower(currency)),
		ReceiptEmail: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("integration_check", "accept_a_payment")

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}
