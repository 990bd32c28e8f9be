package domain

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// GatewaySession is everything the client needs to open the hosted payment
// modal for one order.
type GatewaySession struct {
	Key            string  `json:"key"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	GatewayOrderID string  `json:"order_id,omitempty"`
	Prefill        Prefill `json:"prefill"`
	Theme          Theme   `json:"theme"`
}
