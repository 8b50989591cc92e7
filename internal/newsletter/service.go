package newsletter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightpath/coaching-api/internal/pkg/logger"
	"github.com/brightpath/coaching-api/internal/pkg/validate"
)

// SubscriberStore is the persistence surface Subscribe and Confirm need.
type SubscriberStore interface {
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	Create(ctx context.Context, sub Subscriber) (string, error)
	RotateToken(ctx context.Context, id, token string) error
	Confirm(ctx context.Context, id string) error
	SetExternalID(ctx context.Context, id, externalID string) error
}

// ExternalRegistrar mirrors subscribers into an external marketing list.
type ExternalRegistrar interface {
	RegisterContact(ctx context.Context, email, name string) (string, error)
}

// ConfirmationSender sends the double-opt-in confirmation email.
type ConfirmationSender interface {
	SendNewsletterConfirmation(ctx context.Context, email, name, confirmURL string) error
}

// Service implements the double-opt-in subscription flow.
type Service struct {
	store    SubscriberStore
	external ExternalRegistrar
	mailer   ConfirmationSender
	baseURL  string
}

// NewService wires the subscription flow. external may be nil.
func NewService(store SubscriberStore, external ExternalRegistrar, mailer ConfirmationSender, baseURL string) *Service {
	return &Service{
		store:    store,
		external: external,
		mailer:   mailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// SubscribeRequest is the newsletter signup payload.
type SubscribeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name"`
	SourceURL string `json:"sourceUrl"`
	IPAddress string `json:"-"`
}

// Subscribe records a pending subscription and sends a confirmation
// email. An email that already has an entry gets its token rotated and
// a fresh confirmation instead of a duplicate entry.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.Confirmed {
		return "You are already subscribed to our newsletter.", nil
	}

	token := uuid.NewString()
	name := strings.TrimSpace(req.Name)

	var id string
	if existing != nil {
		id = existing.ID
		if name == "" {
			name = existing.Name
		}
		if err := s.store.RotateToken(ctx, id, token); err != nil {
			return "", err
		}
	} else {
		id, err = s.store.Create(ctx, Subscriber{
			Email:             email,
			Name:              name,
			SubscriptionDate:  time.Now().UTC(),
			Active:            true,
			SourceURL:         req.SourceURL,
			IPAddress:         req.IPAddress,
			ConfirmationToken: token,
			Confirmed:         false,
		})
		if err != nil {
			return "", err
		}
	}

	// The external list mirror is best effort. A subscription succeeds
	// even when the marketing service is down.
	if s.external != nil {
		externalID, regErr := s.external.RegisterContact(ctx, email, name)
		if regErr != nil {
			logger.Warn("External newsletter registration failed",
				"subscriberId", id, "error", regErr.Error())
		} else if externalID != "" {
			if setErr := s.store.SetExternalID(ctx, id, externalID); setErr != nil {
				logger.Warn("Failed to record external contact id",
					"subscriberId", id, "error", setErr.Error())
			}
		}
	}

	if err := s.mailer.SendNewsletterConfirmation(ctx, email, name, s.ConfirmURL(token, email)); err != nil {
		return "", fmt.Errorf("sending confirmation email: %w", err)
	}

	logger.Info("Newsletter subscription pending confirmation",
		"subscriberId", id, "email", email)
	return "Please check your inbox to confirm your subscription.", nil
}

// ConfirmURL builds the link embedded in the confirmation email.
func (s *Service) ConfirmURL(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return s.baseURL + "/api/newsletter?" + q.Encode()
}

// Confirm completes the double opt-in for a token/email pair.
func (s *Service) Confirm(ctx context.Context, token, email string) error {
	token = strings.TrimSpace(token)
	email = strings.ToLower(strings.TrimSpace(email))
	if token == "" || email == "" {
		return validate.NewError("token and email are required")
	}

	sub, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if sub == nil || sub.ConfirmationToken != token {
		return validate.NewError("invalid confirmation link")
	}
	// Clicking the link twice lands on the same thank-you page.
	if sub.Confirmed {
		return nil
	}

	if err := s.store.Confirm(ctx, sub.ID); err != nil {
		return err
	}
	logger.Info("Newsletter subscription confirmed", "subscriberId", sub.ID, "email", email)
	return nil
}
