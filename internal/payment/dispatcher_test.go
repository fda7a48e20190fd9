package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/payment"
	"github.com/v-23-69/coinkart/internal/port"
	"go.uber.org/zap"
)

type fakeHandler struct {
	resp domain.PaymentResponse
	err  error
}

func (h *fakeHandler) Accept(_ context.Context, _ domain.PaymentRequest) (domain.PaymentResponse, error) {
	return h.resp, h.err
}

func fakePaymentRequest() domain.PaymentRequest {
	return domain.PaymentRequest{
		OrderID:       uuid.MustParse(gofakeit.UUID()),
		Amount:        domain.Money{Amount: decimal.NewFromInt(17700), Currency: domain.INR},
		CustomerEmail: gofakeit.Email(),
		CustomerPhone: gofakeit.Phone(),
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		method      domain.PaymentMethod
		handler     *fakeHandler
		wantError   error
		wantSuccess bool
		wantMessage string
	}{
		{
			name:   "registered method, approved: ok",
			method: domain.PaymentMethodUPI,
			handler: &fakeHandler{
				resp: domain.PaymentResponse{Success: true, Message: "captured", TransactionID: "txn-1"},
			},
			wantSuccess: true,
			wantMessage: "captured",
		},
		{
			name:   "registered method, declined: no error",
			method: domain.PaymentMethodUPI,
			handler: &fakeHandler{
				resp: domain.PaymentResponse{Success: false, Message: "insufficient funds"},
			},
			wantSuccess: false,
			wantMessage: "insufficient funds",
		},
		{
			name:      "handler fault: processing error",
			method:    domain.PaymentMethodUPI,
			handler:   &fakeHandler{err: errors.New("gateway timeout")},
			wantError: payment.ErrPaymentProcessing,
		},
		{
			name:      "unregistered method: unsupported",
			method:    domain.PaymentMethodCard,
			handler:   &fakeHandler{},
			wantError: payment.ErrUnsupportedMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := payment.NewDispatcher(zap.NewNop(), map[domain.PaymentMethod]port.PaymentHandler{
				domain.PaymentMethodUPI: tt.handler,
			})

			resp, err := dispatcher.Dispatch(t.Context(), tt.method, fakePaymentRequest())
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
			// the dispatcher echoes the routed method
			assert.Equal(t, tt.method, resp.Method)
		})
	}
}
