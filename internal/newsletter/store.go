package newsletter

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/brightpath/coaching-api/internal/contentful"
)

// ContentType is the repository content-type id for subscribers.
const ContentType = "newsletterSubscriber"

// Subscriber mirrors the newsletterSubscriber entry schema. Email is
// the unique key: re-subscription re-uses the entry and rotates the
// confirmation token instead of creating a duplicate.
type Subscriber struct {
	ID                string
	Email             string
	Name              string
	SubscriptionDate  time.Time
	Active            bool
	SourceURL         string
	IPAddress         string
	ConfirmationToken string
	Confirmed         bool
	ExternalID        string
}

// Store persists subscribers in the content repository.
type Store struct {
	client *contentful.Client
}

// NewStore creates a subscriber store.
func NewStore(client *contentful.Client) *Store {
	return &Store{client: client}
}

// FindByEmail returns the subscriber entry for an email, or nil when
// none exists.
func (s *Store) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	params := url.Values{}
	params.Set("content_type", ContentType)
	params.Set("fields.email", email)
	params.Set("limit", "1")

	col, err := s.client.QueryEntries(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("looking up subscriber: %w", err)
	}
	if len(col.Items) == 0 {
		return nil, nil
	}

	entry := col.Items[0]
	sub := &Subscriber{
		ID:                entry.Sys.ID,
		Email:             entry.Fields.String("email"),
		Name:              entry.Fields.String("name"),
		Active:            entry.Fields.Bool("active"),
		SourceURL:         entry.Fields.String("sourceUrl"),
		IPAddress:         entry.Fields.String("ipAddress"),
		ConfirmationToken: entry.Fields.String("confirmationToken"),
		Confirmed:         entry.Fields.Bool("confirmed"),
		ExternalID:        entry.Fields.String("externalId"),
	}
	if ts := entry.Fields.String("subscriptionDate"); ts != "" {
		sub.SubscriptionDate, _ = time.Parse(time.RFC3339, ts)
	}
	return sub, nil
}

// Create writes a new subscriber entry and publishes it.
func (s *Store) Create(ctx context.Context, sub Subscriber) (string, error) {
	fields := contentful.Fields{}
	fields.Set("email", sub.Email)
	if sub.Name != "" {
		fields.Set("name", sub.Name)
	}
	fields.Set("subscriptionDate", sub.SubscriptionDate.UTC().Format(time.RFC3339))
	fields.Set("active", sub.Active)
	if sub.SourceURL != "" {
		fields.Set("sourceUrl", sub.SourceURL)
	}
	if sub.IPAddress != "" {
		fields.Set("ipAddress", sub.IPAddress)
	}
	fields.Set("confirmationToken", sub.ConfirmationToken)
	fields.Set("confirmed", sub.Confirmed)

	entry, err := s.client.CreateEntry(ctx, ContentType, fields)
	if err != nil {
		return "", fmt.Errorf("creating subscriber: %w", err)
	}
	if _, err := s.client.PublishEntry(ctx, entry); err != nil {
		return "", fmt.Errorf("publishing subscriber %s: %w", entry.Sys.ID, err)
	}
	return entry.Sys.ID, nil
}

// RotateToken overwrites the confirmation token on an existing entry
// and re-activates it, with the usual single-retry conflict budget.
func (s *Store) RotateToken(ctx context.Context, id, token string) error {
	return s.client.MutateEntry(ctx, id, 2, func(fields contentful.Fields) {
		fields.Set("confirmationToken", token)
		fields.Set("active", true)
		fields.Set("subscriptionDate", time.Now().UTC().Format(time.RFC3339))
	})
}

// Confirm marks the subscriber confirmed.
func (s *Store) Confirm(ctx context.Context, id string) error {
	return s.client.MutateEntry(ctx, id, 2, func(fields contentful.Fields) {
		fields.Set("confirmed", true)
	})
}

// SetExternalID records the external email-service contact id.
func (s *Store) SetExternalID(ctx context.Context, id, externalID string) error {
	return s.client.MutateEntry(ctx, id, 2, func(fields contentful.Fields) {
		fields.Set("externalId", externalID)
	})
}
