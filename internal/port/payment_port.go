package port

import (
	"context"

	"github.com/v-23-69/coinkart/internal/domain"
)

// PaymentHandler is the single capability all payment methods share, so the
// dispatcher can treat them uniformly. A declined payment is a response with
// Success=false, a returned error means the attempt itself faulted.
type PaymentHandler interface {
	Accept(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error)
}
