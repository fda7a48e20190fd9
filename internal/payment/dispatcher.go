package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/port"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedMethod means no handler is registered for the requested
	// method. With a valid UI this is a configuration error.
	ErrUnsupportedMethod = errors.New("unsupported payment method")

	// ErrPaymentProcessing wraps handler faults such as gateway timeouts. The
	// order stays pending, a declined payment is not an error.
	ErrPaymentProcessing = errors.New("payment processing failed")
)

// Dispatcher routes a payment request to exactly one method handler and
// normalizes the outcome. Adding a method means registering a handler, not
// changing the dispatch.
type Dispatcher struct {
	handlers map[domain.PaymentMethod]port.PaymentHandler
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger, handlers map[domain.PaymentMethod]port.PaymentHandler) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		logger:   logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, method domain.PaymentMethod, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	handler, ok := d.handlers[method]
	if !ok {
		return domain.PaymentResponse{}, fmt.Errorf("method %q: %w", method, ErrUnsupportedMethod)
	}

	req.Method = method

	resp, err := handler.Accept(ctx, req)
	if err != nil {
		return domain.PaymentResponse{}, fmt.Errorf("%s handler: %w: %w", method, ErrPaymentProcessing, err)
	}

	resp.Method = method

	if !resp.Success {
		d.logger.Info("payment declined",
			zap.String("order_id", req.OrderID.String()),
			zap.String("method", string(method)),
			zap.String("message", resp.Message))
	}

	return resp, nil
}
