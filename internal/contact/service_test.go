package contact

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/coaching-api/internal/contentful"
	"github.com/brightpath/coaching-api/internal/mailer"
	"github.com/brightpath/coaching-api/internal/pkg/validate"
)

type fakeEntryWriter struct {
	createErr  error
	publishErr error

	created   []contentful.Fields
	published []string
}

func (f *fakeEntryWriter) CreateEntry(_ context.Context, contentType string, fields contentful.Fields) (*contentful.Entry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, fields)
	entry := &contentful.Entry{Fields: fields}
	entry.Sys.ID = "contact-1"
	entry.Sys.Version = 1
	return entry, nil
}

func (f *fakeEntryWriter) PublishEntry(_ context.Context, entry *contentful.Entry) (*contentful.Entry, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, entry.Sys.ID)
	return entry, nil
}

type fakeContactNotifier struct {
	mu sync.Mutex

	notifyErr error
	ackErr    error

	notified []mailer.ContactInfo
	acked    []mailer.ContactInfo
}

func (f *fakeContactNotifier) SendContactNotification(_ context.Context, info mailer.ContactInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notified = append(f.notified, info)
	return nil
}

func (f *fakeContactNotifier) SendContactAck(_ context.Context, info mailer.ContactInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ackErr != nil {
		return f.ackErr
	}
	f.acked = append(f.acked, info)
	return nil
}

func validRequest() Request {
	return Request{
		Name:    "Jane Doe",
		Email:   "Jane@Example.com",
		Subject: "Coaching inquiry",
		Message: "I'd like to book a session.",
	}
}

func TestSubmitRecordsAndNotifies(t *testing.T) {
	entries := &fakeEntryWriter{}
	notifier := &fakeContactNotifier{}
	svc := NewService(entries, notifier)

	id, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "contact-1", id)

	require.Len(t, entries.created, 1)
	fields := entries.created[0]
	assert.Equal(t, "jane@example.com", fields.String("email"))
	assert.Equal(t, "new", fields.String("status"))
	assert.NotEmpty(t, fields.String("submissionDate"))
	assert.Equal(t, []string{"contact-1"}, entries.published)

	require.Len(t, notifier.notified, 1)
	require.Len(t, notifier.acked, 1)
	assert.Equal(t, "jane@example.com", notifier.acked[0].Email)
}

func TestSubmitValidation(t *testing.T) {
	entries := &fakeEntryWriter{}
	svc := NewService(entries, &fakeContactNotifier{})

	cases := []struct {
		name string
		mut  func(*Request)
	}{
		{"missing name", func(r *Request) { r.Name = "" }},
		{"missing email", func(r *Request) { r.Email = "" }},
		{"bad email", func(r *Request) { r.Email = "nope" }},
		{"missing subject", func(r *Request) { r.Subject = "" }},
		{"missing message", func(r *Request) { r.Message = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mut(&req)
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.True(t, validate.IsValidation(err))
		})
	}
	assert.Empty(t, entries.created)
}

func TestSubmitEntryFailureIsFatal(t *testing.T) {
	entries := &fakeEntryWriter{createErr: errors.New("repository down")}
	notifier := &fakeContactNotifier{}
	svc := NewService(entries, notifier)

	_, err := svc.Submit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Empty(t, notifier.notified, "no emails without a stored entry")
	assert.Empty(t, notifier.acked)
}

func TestSubmitPublishFailureIsFatal(t *testing.T) {
	entries := &fakeEntryWriter{publishErr: errors.New("repository down")}
	svc := NewService(entries, &fakeContactNotifier{})

	_, err := svc.Submit(context.Background(), validRequest())
	require.Error(t, err)
}

func TestSubmitEmailFailuresTolerated(t *testing.T) {
	entries := &fakeEntryWriter{}
	notifier := &fakeContactNotifier{
		notifyErr: errors.New("smtp refused"),
		ackErr:    errors.New("smtp refused"),
	}
	svc := NewService(entries, notifier)

	id, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "contact-1", id)
}
