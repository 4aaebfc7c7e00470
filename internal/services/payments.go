package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// PaymentGateway crée l'intention de paiement d'un checkout carte.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, checkoutID string, total float64, metadata map[string]string) (string, error)
}

// StripeGateway : PaymentIntent Stripe, montant en centimes.
type StripeGateway struct {
	currency string
}

// NewStripeGateway configure la clé globale du SDK Stripe.
func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{currency: currency}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, checkoutID string, total float64, metadata map[string]string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToCents(total)),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	params.Context = ctx
	// un retry du même checkout ne crée pas un second paiement
	params.SetIdempotencyKey("checkout-" + checkoutID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent: %w", err)
	}
	return intent.ID, nil
}

// ToCents convertit un montant en unités mineures, arrondi au centime.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
