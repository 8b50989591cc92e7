// Package mailer sends the transactional notification emails: admin
// alerts and customer acknowledgements for contact, newsletter, and
// event-registration flows. Delivery is plain SMTP; bodies are Liquid
// templates.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osteele/liquid"
	"github.com/wneessen/go-mail"

	"github.com/brightpath/coaching-api/internal/config"
)

// Transport delivers rendered messages. *mail.Client satisfies it; tests
// substitute a capture.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer renders and sends notification emails.
type Mailer struct {
	transport    Transport
	fromAddress  string
	fromName     string
	adminAddress string
	engine       *liquid.Engine
}

// New creates a Mailer with a real SMTP transport. Missing transport
// settings are a configuration error and must abort startup.
func New(cfg config.SMTPConfig) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout()),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: creating client: %w", err)
	}

	return NewWithTransport(cfg, client), nil
}

// NewWithTransport creates a Mailer over an existing transport.
func NewWithTransport(cfg config.SMTPConfig, transport Transport) *Mailer {
	return &Mailer{
		transport:    transport,
		fromAddress:  cfg.FromAddress,
		fromName:     cfg.FromName,
		adminAddress: cfg.AdminAddress,
		engine:       liquid.NewEngine(),
	}
}

// RegistrationInfo carries everything the registration emails mention.
type RegistrationInfo struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Message      string
	EventTitle   string
	Amount       float64
	Currency     string
	SubmittedAt  time.Time
}

// Paid reports whether the registration requires payment.
func (r RegistrationInfo) Paid() bool { return r.Amount > 0 }

// PriceLabel renders the price the way both emails state it:
// "USD 50" for paid events, "FREE" otherwise.
func (r RegistrationInfo) PriceLabel() string {
	if !r.Paid() {
		return "FREE"
	}
	currency := strings.ToUpper(r.Currency)
	if currency == "" {
		currency = "USD"
	}
	return currency + " " + strconv.FormatFloat(r.Amount, 'f', -1, 64)
}

func (m *Mailer) render(template string, bindings liquid.Bindings) (string, error) {
	out, err := m.engine.ParseAndRenderString(template, bindings)
	if err != nil {
		return "", fmt.Errorf("rendering email template: %w", err)
	}
	return out, nil
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.fromAddress); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.transport.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

// SendRegistrationEmails sends the admin summary and the registrant
// acknowledgement for a new registration. Both are attempted even when
// one fails; errors are joined.
func (m *Mailer) SendRegistrationEmails(ctx context.Context, info RegistrationInfo) error {
	bindings := liquid.Bindings{
		"name":         info.Name,
		"email":        info.Email,
		"phone":        info.Phone,
		"organization": info.Organization,
		"message":      info.Message,
		"event_title":  info.EventTitle,
		"price_label":  info.PriceLabel(),
		"paid":         info.Paid(),
		"submitted_at": info.SubmittedAt.UTC().Format(time.RFC1123),
	}

	var errs []error
	if body, err := m.render(registrationAdminTemplate, bindings); err != nil {
		errs = append(errs, err)
	} else if err := m.send(ctx, m.adminAddress, "New registration: "+info.EventTitle, body); err != nil {
		errs = append(errs, err)
	}

	if body, err := m.render(registrationCustomerTemplate, bindings); err != nil {
		errs = append(errs, err)
	} else if err := m.send(ctx, info.Email, "Registration received: "+info.EventTitle, body); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SendPaymentConfirmation notifies the customer (when their email is
// known) and the admin that a payment settled.
func (m *Mailer) SendPaymentConfirmation(ctx context.Context, name, email, eventTitle, reference string) error {
	bindings := liquid.Bindings{
		"name":        name,
		"email":       email,
		"event_title": eventTitle,
		"reference":   reference,
	}

	var errs []error
	if email != "" {
		if body, err := m.render(paymentConfirmedCustomerTemplate, bindings); err != nil {
			errs = append(errs, err)
		} else if err := m.send(ctx, email, "Payment confirmed: "+eventTitle, body); err != nil {
			errs = append(errs, err)
		}
	}

	if body, err := m.render(paymentConfirmedAdminTemplate, bindings); err != nil {
		errs = append(errs, err)
	} else if err := m.send(ctx, m.adminAddress, "Payment received: "+eventTitle, body); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ContactInfo carries a contact-form submission for notification.
type ContactInfo struct {
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	SourceURL string
}

// SendContactNotification sends the admin alert for a contact submission.
func (m *Mailer) SendContactNotification(ctx context.Context, info ContactInfo) error {
	body, err := m.render(contactAdminTemplate, liquid.Bindings{
		"name":       info.Name,
		"email":      info.Email,
		"phone":      info.Phone,
		"subject":    info.Subject,
		"message":    info.Message,
		"source_url": info.SourceURL,
	})
	if err != nil {
		return err
	}
	return m.send(ctx, m.adminAddress, "Contact form: "+info.Subject, body)
}

// SendContactAck sends the "we got your message" reply to the sender.
func (m *Mailer) SendContactAck(ctx context.Context, info ContactInfo) error {
	body, err := m.render(contactAckTemplate, liquid.Bindings{
		"name":    info.Name,
		"message": info.Message,
	})
	if err != nil {
		return err
	}
	return m.send(ctx, info.Email, "We received your message", body)
}

// SendNewsletterConfirmation sends the double-opt-in confirmation link.
func (m *Mailer) SendNewsletterConfirmation(ctx context.Context, email, name, confirmURL string) error {
	body, err := m.render(newsletterConfirmTemplate, liquid.Bindings{
		"name":        name,
		"confirm_url": confirmURL,
	})
	if err != nil {
		return err
	}
	return m.send(ctx, email, "Please confirm your subscription", body)
}
