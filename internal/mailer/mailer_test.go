package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/brightpath/coaching-api/internal/config"
)

type captureTransport struct {
	msgs []*mail.Msg
	err  error
}

func (c *captureTransport) DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error {
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func testMailer(transport Transport) *Mailer {
	return NewWithTransport(config.SMTPConfig{
		Host:         "smtp.example.com",
		FromAddress:  "no-reply@example.com",
		FromName:     "BrightPath Coaching",
		AdminAddress: "admin@example.com",
	}, transport)
}

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "FREE", RegistrationInfo{}.PriceLabel())
	assert.Equal(t, "FREE", RegistrationInfo{Amount: -5}.PriceLabel())
	assert.Equal(t, "USD 50", RegistrationInfo{Amount: 50, Currency: "usd"}.PriceLabel())
	assert.Equal(t, "EUR 49.5", RegistrationInfo{Amount: 49.5, Currency: "EUR"}.PriceLabel())
	assert.Equal(t, "USD 25", RegistrationInfo{Amount: 25}.PriceLabel())
}

func TestRegistrationTemplatesMentionPrice(t *testing.T) {
	m := testMailer(&captureTransport{})

	paid := RegistrationInfo{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		EventTitle: "Leadership Summit",
		Amount:     50,
		Currency:   "USD",
	}
	body, err := m.render(registrationAdminTemplate, liquidBindings(paid))
	require.NoError(t, err)
	assert.Contains(t, body, "USD 50")
	assert.Contains(t, body, "Leadership Summit")

	body, err = m.render(registrationCustomerTemplate, liquidBindings(paid))
	require.NoError(t, err)
	assert.Contains(t, body, "USD 50")
	assert.Contains(t, body, "payment")

	free := RegistrationInfo{Name: "Jo", Email: "jo@example.com", EventTitle: "Open House"}
	body, err = m.render(registrationCustomerTemplate, liquidBindings(free))
	require.NoError(t, err)
	assert.Contains(t, body, "FREE")
	assert.Contains(t, body, "no payment is required")
}

func TestSendRegistrationEmailsSendsTwo(t *testing.T) {
	transport := &captureTransport{}
	m := testMailer(transport)

	err := m.SendRegistrationEmails(context.Background(), RegistrationInfo{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		EventTitle:  "Leadership Summit",
		Amount:      50,
		Currency:    "USD",
		SubmittedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Len(t, transport.msgs, 2, "admin summary + registrant acknowledgement")
}

func TestSendRegistrationEmailsReportsTransportFailure(t *testing.T) {
	transport := &captureTransport{err: errors.New("connection refused")}
	m := testMailer(transport)

	err := m.SendRegistrationEmails(context.Background(), RegistrationInfo{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		EventTitle: "Leadership Summit",
	})
	assert.Error(t, err)
	// Both sends are still attempted
	assert.Len(t, transport.msgs, 2)
}

func TestSendPaymentConfirmationSkipsUnknownCustomer(t *testing.T) {
	transport := &captureTransport{}
	m := testMailer(transport)

	err := m.SendPaymentConfirmation(context.Background(), "Jane", "", "Leadership Summit", "pi_123")
	require.NoError(t, err)
	assert.Len(t, transport.msgs, 1, "admin only when customer email is unknown")
}

func TestSendNewsletterConfirmationIncludesLink(t *testing.T) {
	transport := &captureTransport{}
	m := testMailer(transport)

	confirmURL := "https://coaching.example.com/api/newsletter?token=tok&email=jane%40example.com"
	body, err := m.render(newsletterConfirmTemplate, map[string]any{
		"name":        "Jane",
		"confirm_url": confirmURL,
	})
	require.NoError(t, err)
	assert.Contains(t, body, confirmURL)

	require.NoError(t, m.SendNewsletterConfirmation(context.Background(), "jane@example.com", "Jane", confirmURL))
	assert.Len(t, transport.msgs, 1)
}

// liquidBindings mirrors SendRegistrationEmails' template inputs.
func liquidBindings(info RegistrationInfo) map[string]any {
	return map[string]any{
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
}
