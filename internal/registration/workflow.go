// Package registration orchestrates the event-registration workflow:
// entry creation in the content repository, conditional payment-intent
// creation, notification dispatch, and the two payment reconciliation
// paths (gateway webhook and client confirmation) that race on the same
// entry.
package registration

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brightpath/coaching-api/internal/mailer"
	"github.com/brightpath/coaching-api/internal/pkg/logger"
	"github.com/brightpath/coaching-api/internal/pkg/validate"
	"github.com/brightpath/coaching-api/internal/stripe"
)

// EntryStore is the registration persistence surface (see Store).
type EntryStore interface {
	Create(ctx context.Context, reg Registration) (string, error)
	AttachPaymentReference(ctx context.Context, id, reference string) error
	SetPayment(ctx context.Context, id, status, reference string, paidAt time.Time, attempts int) error
}

// PaymentCreator creates payment intents (see stripe.Client).
type PaymentCreator interface {
	CreatePaymentIntent(ctx context.Context, p stripe.CreateIntentParams) (*stripe.PaymentIntent, error)
}

// Notifier dispatches the workflow's emails (see mailer.Mailer).
type Notifier interface {
	SendRegistrationEmails(ctx context.Context, info mailer.RegistrationInfo) error
	SendPaymentConfirmation(ctx context.Context, name, email, eventTitle, reference string) error
}

// EventTitleSource resolves event titles for notification emails
// (see content.Repository).
type EventTitleSource interface {
	EventTitle(ctx context.Context, id string) string
}

// Workflow wires the registration flow's collaborators. payments may be
// nil when the gateway is not configured; paid registrations then fail
// with a configuration error instead of silently skipping payment.
type Workflow struct {
	store    EntryStore
	payments PaymentCreator
	notify   Notifier
	events   EventTitleSource
}

// NewWorkflow creates the registration workflow.
func NewWorkflow(store EntryStore, payments PaymentCreator, notify Notifier, events EventTitleSource) *Workflow {
	return &Workflow{store: store, payments: payments, notify: notify, events: events}
}

// Request is one inbound registration submission.
type Request struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone"`
	Organization string  `json:"organization"`
	Message      string  `json:"message"`
	EventID      string  `json:"eventId" validate:"required"`
	EventTitle   string  `json:"eventTitle" validate:"required"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// Result is the workflow outcome. ClientSecret is set only for paid
// registrations; response encoding preserves key absence for free ones.
type Result struct {
	RegistrationID string
	ClientSecret   string
	Paid           bool
}

// PaymentStatusForAmount derives the initial payment status:
// not_applicable exactly when amount is absent or ≤ 0.
func PaymentStatusForAmount(amount float64) string {
	if amount > 0 {
		return PaymentPending
	}
	return PaymentNotApplicable
}

// Register runs the full registration sequence. Entry creation failure
// fails the request; a failed payment-reference attach does not (the
// client still needs the client secret), and email failures never do.
func (w *Workflow) Register(ctx context.Context, req Request) (*Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	amount := req.Amount
	if amount < 0 {
		amount = 0
	}

	reg := Registration{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Organization:   req.Organization,
		Message:        req.Message,
		EventID:        req.EventID,
		EventTitle:     req.EventTitle,
		SubmissionDate: time.Now(),
		Amount:         amount,
		Currency:       currency,
		PaymentStatus:  PaymentStatusForAmount(amount),
		Status:         StatusNew,
	}

	id, err := w.store.Create(ctx, reg)
	if err != nil {
		return nil, err
	}

	result := &Result{RegistrationID: id}

	if amount > 0 {
		if w.payments == nil {
			return nil, fmt.Errorf("registration %s requires payment but no gateway is configured", id)
		}

		intent, err := w.payments.CreatePaymentIntent(ctx, stripe.CreateIntentParams{
			Amount:       MinorUnits(amount),
			Currency:     currency,
			ReceiptEmail: req.Email,
			Description:  "Event registration: " + req.EventTitle,
			Metadata: map[string]string{
				"registrationId": id,
				"eventId":        req.EventID,
				"eventTitle":     req.EventTitle,
				"customerName":   req.Name,
				"customerEmail":  req.Email,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("creating payment intent for registration %s: %w", id, err)
		}
		result.ClientSecret = intent.ClientSecret
		result.Paid = true

		// The client needs the secret even when the back-reference write
		// loses its race twice; log and move on. If the webhook also
		// never fires the entry stays without a reference and needs a
		// manual ops fix.
		if err := w.store.AttachPaymentReference(ctx, id, intent.ID); err != nil {
			logger.Error("registration: attaching payment reference failed",
				"registration_id", id, "payment_intent", intent.ID, "error", err)
		}
	}

	if err := w.notify.SendRegistrationEmails(ctx, mailer.RegistrationInfo{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Message:      req.Message,
		EventTitle:   req.EventTitle,
		Amount:       amount,
		Currency:     currency,
		SubmittedAt:  reg.SubmissionDate,
	}); err != nil {
		logger.Error("registration: notification emails failed",
			"registration_id", id, "error", err)
	}

	return result, nil
}

// MinorUnits converts a decimal amount to the gateway's integer minor
// units (50 USD → 5000).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// UpdatePaymentStatus is the client-confirmation path, taken right
// after the browser confirms payment. It races the webhook on the same
// entry; both phases carry the single-retry conflict budget, which is
// what makes the race convergent. A double conflict surfaces to the
// caller; the webhook remains the authoritative fallback.
func (w *Workflow) UpdatePaymentStatus(ctx context.Context, registrationID, paymentIntentID, status string) error {
	if registrationID == "" {
		return validate.NewError("registrationId is required")
	}
	if paymentIntentID == "" {
		return validate.NewError("paymentIntentId is required")
	}
	switch status {
	case PaymentSucceeded, PaymentPaid, PaymentFailed, PaymentPending:
	default:
		return validate.NewError("status must be one of pending, succeeded, paid, failed")
	}

	var paidAt time.Time
	if status == PaymentSucceeded || status == PaymentPaid {
		paidAt = time.Now()
	}
	return w.store.SetPayment(ctx, registrationID, status, paymentIntentID, paidAt, 2)
}

// HandleCheckoutCompleted reconciles a checkout.session.completed
// webhook event. Signature verification already happened; from here on
// every failure is logged and swallowed so the gateway is acknowledged
// and does not redeliver over a lost email.
func (w *Workflow) HandleCheckoutCompleted(ctx context.Context, session stripe.CheckoutSession) {
	registrationID := session.Metadata["registrationId"]
	if registrationID == "" {
		logger.Warn("webhook: checkout session without registrationId metadata, ignoring",
			"session", session.ID)
		return
	}

	reference := session.PaymentIntent
	if reference == "" {
		reference = session.ID
	}

	// Single attempt per phase: the webhook is the first writer in the
	// common case and the gateway will not redeliver for our conflicts.
	if err := w.store.SetPayment(ctx, registrationID, PaymentPaid, reference, time.Now(), 1); err != nil {
		logger.Error("webhook: payment reconciliation failed",
			"registration_id", registrationID, "reference", reference, "error", err)
	}

	eventTitle := "your event"
	if eventID := session.Metadata["eventId"]; eventID != "" && w.events != nil {
		eventTitle = w.events.EventTitle(ctx, eventID)
	}

	name := session.CustomerDetails.Name
	if name == "" {
		name = session.Metadata["customerName"]
	}
	email := session.CustomerDetails.Email
	if email == "" {
		email = session.Metadata["customerEmail"]
	}

	if err := w.notify.SendPaymentConfirmation(ctx, name, email, eventTitle, reference); err != nil {
		logger.Error("webhook: payment confirmation emails failed",
			"registration_id", registrationID, "error", err)
	}
}
