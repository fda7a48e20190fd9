package domain

type CheckoutState string

const (
	CheckoutStateIdle            CheckoutState = "IDLE"
	CheckoutStateValidating      CheckoutState = "VALIDATING"
	CheckoutStatePlacing         CheckoutState = "PLACING"
	CheckoutStateAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
	CheckoutStateFailed          CheckoutState = "FAILED"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:       {CheckoutStateValidating},
	CheckoutStateValidating: {CheckoutStateIdle, CheckoutStatePlacing},
	CheckoutStatePlacing:    {CheckoutStateAwaitingPayment, CheckoutStateFailed},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
