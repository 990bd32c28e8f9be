package domain

type CheckoutState string

const (
	StateIdle                   CheckoutState = "IDLE"
	StateAwaitingSubmission     CheckoutState = "AWAITING_SUBMISSION"
	StateValidatingForm         CheckoutState = "VALIDATING_FORM"
	StateOrderBuilt             CheckoutState = "ORDER_BUILT"
	StateGatewayPending         CheckoutState = "GATEWAY_PENDING"
	StateDirectConfirmed        CheckoutState = "DIRECT_CONFIRMED"
	StateNotificationDispatched CheckoutState = "NOTIFICATION_DISPATCHED"
	StateCompleted              CheckoutState = "COMPLETED"
	StateCancelled              CheckoutState = "CANCELLED"
	StateFailed                 CheckoutState = "FAILED"
)

var transitions = map[CheckoutState][]CheckoutState{
	StateIdle:                   {StateAwaitingSubmission},
	StateAwaitingSubmission:     {StateValidatingForm},
	StateValidatingForm:         {StateOrderBuilt, StateFailed},
	StateOrderBuilt:             {StateGatewayPending, StateDirectConfirmed, StateFailed},
	StateGatewayPending:         {StateNotificationDispatched, StateCancelled, StateFailed},
	StateDirectConfirmed:        {StateNotificationDispatched},
	StateNotificationDispatched: {StateCompleted},
}

func CanTransitionTo(from, to CheckoutState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

func (s CheckoutState) String() string {
	return string(s)
}
