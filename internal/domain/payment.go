package domain

import (
	"errors"

	"github.com/google/uuid"
)

type PaymentMethod string

// remember to add new methods to the validPaymentMethods map
const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodUPI:        {},
	PaymentMethodCard:       {},
	PaymentMethodNetBanking: {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(s)
	if _, ok := validPaymentMethods[method]; ok {
		return method, nil
	}

	return "", errors.New("invalid payment method")
}

func PaymentMethods() []PaymentMethod {
	result := make([]PaymentMethod, 0, len(validPaymentMethods))
	for method := range validPaymentMethods {
		result = append(result, method)
	}
	return result
}

// PaymentRequest is built once per payment attempt and not persisted.
// Token is the opaque instrument token collected by the UI, e.g. a card
// payment-method id. Methods that do not need one ignore it.
type PaymentRequest struct {
	OrderID       uuid.UUID
	Amount        Money
	CustomerEmail string
	CustomerPhone string
	Method        PaymentMethod
	Token         string
}

// PaymentResponse with Success=false means a declined payment, not a fault.
// Handler faults (timeouts, transport) are returned as errors instead.
type PaymentResponse struct {
	Success       bool
	Message       string
	TransactionID string
	Method        PaymentMethod
}
