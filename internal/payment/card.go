package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/v-23-69/coinkart/internal/domain"
)

// CardHandler captures card payments through Stripe. The UI collects the card
// and hands over a payment-method token, the server confirms the intent.
type CardHandler struct{}

func NewCardHandler(secretKey string) *CardHandler {
	stripe.Key = secretKey
	return &CardHandler{}
}

func (h *CardHandler) Accept(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits(req.Amount.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Amount.Currency.String())),
		Confirm:       stripe.Bool(true),
		PaymentMethod: stripe.String(req.Token),
		ReceiptEmail:  stripe.String(req.CustomerEmail),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		// Card errors are declines, everything else is a processing fault.
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return domain.PaymentResponse{
				Success: false,
				Message: declineMessage(stripeErr.Msg, "card payment declined"),
				Method:  domain.PaymentMethodCard,
			}, nil
		}
		return domain.PaymentResponse{}, fmt.Errorf("paymentintent.New: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return domain.PaymentResponse{
			Success: false,
			Message: fmt.Sprintf("card payment not completed: %s", pi.Status),
			Method:  domain.PaymentMethodCard,
		}, nil
	}

	return domain.PaymentResponse{
		Success:       true,
		Message:       "card payment captured",
		TransactionID: pi.ID,
		Method:        domain.PaymentMethodCard,
	}, nil
}

// minorUnits converts a decimal major-unit amount to the smallest currency
// unit as Stripe expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
