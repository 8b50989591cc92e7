package contact

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brightpath/coaching-api/internal/contentful"
	"github.com/brightpath/coaching-api/internal/mailer"
	"github.com/brightpath/coaching-api/internal/pkg/logger"
	"github.com/brightpath/coaching-api/internal/pkg/validate"
)

// ContentType is the repository content-type id for contact submissions.
const ContentType = "contactSubmission"

// EntryWriter is the slice of the content client Submit needs.
type EntryWriter interface {
	CreateEntry(ctx context.Context, contentType string, fields contentful.Fields) (*contentful.Entry, error)
	PublishEntry(ctx context.Context, entry *contentful.Entry) (*contentful.Entry, error)
}

// Notifier sends the two contact emails.
type Notifier interface {
	SendContactNotification(ctx context.Context, info mailer.ContactInfo) error
	SendContactAck(ctx context.Context, info mailer.ContactInfo) error
}

// Service records contact-form submissions and notifies both sides.
type Service struct {
	entries EntryWriter
	mailer  Notifier
}

// NewService wires the contact flow.
func NewService(entries EntryWriter, notifier Notifier) *Service {
	return &Service{entries: entries, mailer: notifier}
}

// Request is the contact-form payload.
type Request struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject" validate:"required"`
	Message   string `json:"message" validate:"required"`
	SourceURL string `json:"sourceUrl"`
	IPAddress string `json:"-"`
}

// Submit persists the submission and dispatches the admin notification
// and the sender acknowledgement in parallel. The entry write is the
// source of truth; a failed email never fails the request.
func (s *Service) Submit(ctx context.Context, req Request) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", err
	}

	fields := contentful.Fields{}
	fields.Set("name", strings.TrimSpace(req.Name))
	fields.Set("email", strings.ToLower(strings.TrimSpace(req.Email)))
	if req.Phone != "" {
		fields.Set("phone", req.Phone)
	}
	fields.Set("subject", req.Subject)
	fields.Set("message", req.Message)
	if req.SourceURL != "" {
		fields.Set("sourceUrl", req.SourceURL)
	}
	if req.IPAddress != "" {
		fields.Set("ipAddress", req.IPAddress)
	}
	fields.Set("submissionDate", time.Now().UTC().Format(time.RFC3339))
	fields.Set("status", "new")

	entry, err := s.entries.CreateEntry(ctx, ContentType, fields)
	if err != nil {
		return "", fmt.Errorf("creating contact submission: %w", err)
	}
	if _, err := s.entries.PublishEntry(ctx, entry); err != nil {
		return "", fmt.Errorf("publishing contact submission %s: %w", entry.Sys.ID, err)
	}

	info := mailer.ContactInfo{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		SourceURL: req.SourceURL,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.mailer.SendContactNotification(ctx, info); err != nil {
			logger.Error("Failed to send contact notification",
				"submissionId", entry.Sys.ID, "error", err.Error())
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.mailer.SendContactAck(ctx, info); err != nil {
			logger.Error("Failed to send contact acknowledgement",
				"submissionId", entry.Sys.ID, "error", err.Error())
		}
	}()
	wg.Wait()

	logger.Info("Contact submission recorded",
		"submissionId", entry.Sys.ID, "email", info.Email)
	return entry.Sys.ID, nil
}
