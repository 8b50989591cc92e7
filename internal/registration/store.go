package registration

import (
	"context"
	"fmt"
	"time"

	"github.com/brightpath/coaching-api/internal/contentful"
)

// ContentType is the repository content-type id for registrations.
const ContentType = "eventRegistration"

// Payment statuses. not_applicable holds exactly when the event is free
// (amount absent or ≤ 0); paid registrations start at pending and move
// to paid/succeeded via the webhook or the client-confirmation path.
const (
	PaymentNotApplicable = "not_applicable"
	PaymentPending       = "pending"
	PaymentSucceeded     = "succeeded"
	PaymentPaid          = "paid"
	PaymentFailed        = "failed"
)

// Registration lifecycle statuses (ops-managed after creation).
const (
	StatusNew       = "New"
	StatusContacted = "Contacted"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
	StatusAttended  = "Attended"
	StatusNoShow    = "No-Show"
)

// Registration mirrors the eventRegistration entry schema.
type Registration struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	Organization     string
	Message          string
	EventID          string
	EventTitle       string
	SubmissionDate   time.Time
	Amount           float64
	Currency         string
	PaymentStatus    string
	PaymentReference string
	PaymentDate      time.Time
	Status           string
	Notes            string
}

// Store persists registrations in the content repository. Every write
// is a versioned entry write; mutations run as read-modify-write with a
// per-phase conflict budget.
type Store struct {
	client *contentful.Client
}

// NewStore creates a registration store.
func NewStore(client *contentful.Client) *Store {
	return &Store{client: client}
}

// Create writes a new registration entry and publishes it. The returned
// id is repository-assigned.
func (s *Store) Create(ctx context.Context, reg Registration) (string, error) {
	fields := contentful.Fields{}
	fields.Set("name", reg.Name)
	fields.Set("email", reg.Email)
	if reg.Phone != "" {
		fields.Set("phone", reg.Phone)
	}
	if reg.Organization != "" {
		fields.Set("organization", reg.Organization)
	}
	if reg.Message != "" {
		fields.Set("message", reg.Message)
	}
	fields.Set("eventId", reg.EventID)
	fields.Set("eventTitle", reg.EventTitle)
	fields.Set("submissionDate", reg.SubmissionDate.UTC().Format(time.RFC3339))
	fields.Set("amount", reg.Amount)
	fields.Set("currency", reg.Currency)
	fields.Set("paymentStatus", reg.PaymentStatus)
	fields.Set("status", reg.Status)

	entry, err := s.client.CreateEntry(ctx, ContentType, fields)
	if err != nil {
		return "", fmt.Errorf("creating registration: %w", err)
	}
	if _, err := s.client.PublishEntry(ctx, entry); err != nil {
		return "", fmt.Errorf("publishing registration %s: %w", entry.Sys.ID, err)
	}
	return entry.Sys.ID, nil
}

// Get reads the registration back out of the repository.
func (s *Store) Get(ctx context.Context, id string) (*Registration, error) {
	entry, err := s.client.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	reg := &Registration{
		ID:               entry.Sys.ID,
		Name:             entry.Fields.String("name"),
		Email:            entry.Fields.String("email"),
		Phone:            entry.Fields.String("phone"),
		Organization:     entry.Fields.String("organization"),
		Message:          entry.Fields.String("message"),
		EventID:          entry.Fields.String("eventId"),
		EventTitle:       entry.Fields.String("eventTitle"),
		Amount:           entry.Fields.Float("amount"),
		Currency:         entry.Fields.String("currency"),
		PaymentStatus:    entry.Fields.String("paymentStatus"),
		PaymentReference: entry.Fields.String("paymentReference"),
		Status:           entry.Fields.String("status"),
		Notes:            entry.Fields.String("notes"),
	}
	if ts := entry.Fields.String("submissionDate"); ts != "" {
		reg.SubmissionDate, _ = time.Parse(time.RFC3339, ts)
	}
	if ts := entry.Fields.String("paymentDate"); ts != "" {
		reg.PaymentDate, _ = time.Parse(time.RFC3339, ts)
	}
	return reg, nil
}

// AttachPaymentReference records the payment-intent id on the entry,
// retrying once per phase on a version conflict. This races with the
// webhook when payment completes very fast; the retry is what keeps the
// race convergent instead of lossy.
func (s *Store) AttachPaymentReference(ctx context.Context, id, reference string) error {
	return s.mutate(ctx, id, 2, func(fields contentful.Fields) {
		fields.Set("paymentReference", reference)
	})
}

// SetPayment records the payment outcome. attempts is the per-phase
// conflict budget: the client-confirmation path uses 2, the webhook
// path uses 1 (it is the first writer in the common case).
func (s *Store) SetPayment(ctx context.Context, id, status, reference string, paidAt time.Time, attempts int) error {
	return s.mutate(ctx, id, attempts, func(fields contentful.Fields) {
		fields.Set("paymentStatus", status)
		if reference != "" {
			fields.Set("paymentReference", reference)
		}
		if !paidAt.IsZero() {
			fields.Set("paymentDate", paidAt.UTC().Format(time.RFC3339))
		}
	})
}

// mutate delegates to the shared read-modify-write-then-publish helper;
// attempts is the per-phase conflict budget.
func (s *Store) mutate(ctx context.Context, id string, attempts int, apply func(contentful.Fields)) error {
	return s.client.MutateEntry(ctx, id, attempts, apply)
}
