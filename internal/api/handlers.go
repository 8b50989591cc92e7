package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/brightpath/coaching-api/internal/contact"
	"github.com/brightpath/coaching-api/internal/newsletter"
	"github.com/brightpath/coaching-api/internal/pkg/httputil"
	"github.com/brightpath/coaching-api/internal/pkg/logger"
	"github.com/brightpath/coaching-api/internal/pkg/validate"
	"github.com/brightpath/coaching-api/internal/ratelimit"
	"github.com/brightpath/coaching-api/internal/registration"
	"github.com/brightpath/coaching-api/internal/stripe"
)

// webhookBodyLimit caps webhook payload reads.
const webhookBodyLimit = 1 << 20

// ContactService handles contact-form submissions.
type ContactService interface {
	Submit(ctx context.Context, req contact.Request) (string, error)
}

// NewsletterService handles the double-opt-in subscription flow.
type NewsletterService interface {
	Subscribe(ctx context.Context, req newsletter.SubscribeRequest) (string, error)
	Confirm(ctx context.Context, token, email string) error
}

// RegistrationService handles event registrations and their payments.
type RegistrationService interface {
	Register(ctx context.Context, req registration.Request) (*registration.Result, error)
	UpdatePaymentStatus(ctx context.Context, registrationID, paymentIntentID, status string) error
	HandleCheckoutCompleted(ctx context.Context, session stripe.CheckoutSession)
}

// WebhookVerifier checks webhook signatures and decodes events.
type WebhookVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// Handlers holds the services the HTTP layer dispatches into.
type Handlers struct {
	contacts      ContactService
	subscriptions NewsletterService
	registrations RegistrationService
	content       ContentReader
	webhooks      WebhookVerifier // nil when payments are disabled
	limiter       *ratelimit.Limiter
	thankYouPath  string
}

// NewHandlers wires the HTTP layer. webhooks and limiter may be nil.
func NewHandlers(
	contacts ContactService,
	subscriptions NewsletterService,
	registrations RegistrationService,
	contentReader ContentReader,
	webhooks WebhookVerifier,
	limiter *ratelimit.Limiter,
	thankYouPath string,
) *Handlers {
	if thankYouPath == "" {
		thankYouPath = "/thank-you"
	}
	return &Handlers{
		contacts:      contacts,
		subscriptions: subscriptions,
		registrations: registrations,
		content:       contentReader,
		webhooks:      webhooks,
		limiter:       limiter,
		thankYouPath:  thankYouPath,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HandleContact accepts a contact-form submission.
func (h *Handlers) HandleContact(w http.ResponseWriter, r *http.Request) {
	var req contact.Request
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.IPAddress = clientIP(r)
	if req.SourceURL == "" {
		req.SourceURL = r.Referer()
	}

	if _, err := h.contacts.Submit(r.Context(), req); err != nil {
		if validate.IsValidation(err) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, messageResponse{
		Success: true,
		Message: "Thank you for your message. We will be in touch shortly.",
	})
}

// HandleNewsletterSubscribe accepts a newsletter signup.
func (h *Handlers) HandleNewsletterSubscribe(w http.ResponseWriter, r *http.Request) {
	var req newsletter.SubscribeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	req.IPAddress = clientIP(r)

	msg, err := h.subscriptions.Subscribe(r.Context(), req)
	if err != nil {
		if validate.IsValidation(err) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, messageResponse{Success: true, Message: msg})
}

// HandleNewsletterConfirm completes the double opt-in from the emailed
// link, then sends the subscriber to the thank-you page.
func (h *Handlers) HandleNewsletterConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	email := r.URL.Query().Get("email")

	if err := h.subscriptions.Confirm(r.Context(), token, email); err != nil {
		if validate.IsValidation(err) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	http.Redirect(w, r, h.thankYouPath, http.StatusFound)
}

// registrationResponse keeps registrationId and clientSecret out of
// the body entirely for free events, not present-but-null.
type registrationResponse struct {
	Success        bool   `json:"success"`
	RegistrationID string `json:"registrationId,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
}

// HandleEventRegistration accepts an event registration, creating a
// payment intent when the event is paid.
func (h *Handlers) HandleEventRegistration(w http.ResponseWriter, r *http.Request) {
	var req registration.Request
	if !httputil.Decode(w, r, &req) {
		return
	}

	result, err := h.registrations.Register(r.Context(), req)
	if err != nil {
		if validate.IsValidation(err) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	resp := registrationResponse{Success: true}
	if result.Paid {
		resp.RegistrationID = result.RegistrationID
		resp.ClientSecret = result.ClientSecret
	}
	httputil.OK(w, resp)
}

type paymentUpdateRequest struct {
	RegistrationID  string `json:"registrationId"`
	PaymentIntentID string `json:"paymentIntentId"`
	Status          string `json:"status"`
}

// HandlePaymentUpdate records a client-confirmed payment outcome.
func (h *Handlers) HandlePaymentUpdate(w http.ResponseWriter, r *http.Request) {
	var req paymentUpdateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	err := h.registrations.UpdatePaymentStatus(r.Context(), req.RegistrationID, req.PaymentIntentID, req.Status)
	if err != nil {
		if validate.IsValidation(err) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, messageResponse{Success: true, Message: "Payment status updated"})
}

// HandleWebhook verifies and dispatches payment-provider events.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhooks == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		httputil.BadRequest(w, "Failed to read request body")
		return
	}

	event, err := h.webhooks.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn("Webhook signature verification failed", "error", err.Error())
		httputil.BadRequest(w, "Invalid signature")
		return
	}

	switch event.Type {
	case stripe.EventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			logger.Error("Failed to decode checkout session", "eventId", event.ID, "error", err.Error())
			break
		}
		h.registrations.HandleCheckoutCompleted(r.Context(), session)
	case stripe.EventPaymentIntentSucceeded:
		// The checkout.session.completed event carries the registration
		// metadata, so this one is acknowledged without action.
		logger.Info("Payment intent succeeded", "eventId", event.ID)
	default:
		logger.Info("Ignoring webhook event", "eventId", event.ID, "type", event.Type)
	}

	httputil.OK(w, map[string]bool{"received": true})
}

func clientIP(r *http.Request) string {
	// middleware.RealIP has already folded X-Forwarded-For into RemoteAddr.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
