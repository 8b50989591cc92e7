package stripe

import "encoding/json"

// PaymentIntent is a gateway-side object representing an in-progress
// charge. It is never persisted locally; only its id lands on the
// registration entry as the payment reference.
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

// Event is a webhook event envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Webhook event types this system reacts to. Everything else is logged
// and ignored.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
)

// CheckoutSession is the data.object of a checkout.session.completed
// event. Metadata carries the registration id the reconciliation keys on.
type CheckoutSession struct {
	ID              string `json:"id"`
	PaymentIntent   string `json:"payment_intent"`
	PaymentStatus   string `json:"payment_status"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}
