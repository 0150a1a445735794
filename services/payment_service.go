package services

import (
	"context"
	"fmt"
	"strings"

	"freshfetch/models"

	"github.com/shopspring/decimal"
)

// PaymentGateway creates a payment intent for an amount in the currency's smallest unit.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency, email string) (string, error)
}

type PaymentService struct {
	gateway PaymentGateway
}

func NewPaymentService(gateway PaymentGateway) *PaymentService {
	return &PaymentService{gateway: gateway}
}

// AmountInCents is round(total * 100).
func AmountInCents(total float64) int64 {
	return decimal.NewFromFloat(total).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *PaymentService) CreateIntent(ctx context.Context, req models.PaymentIntentRequest) (string, error) {
	if s.gateway == nil {
		return "", fmt.Errorf("%w: payments", ErrUnavailable)
	}
	if req.Total <= 0 || strings.TrimSpace(req.Email) == "" {
		return "", validationError("missing total or email")
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, AmountInCents(req.Total), currency, req.Email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return secret, nil
}
