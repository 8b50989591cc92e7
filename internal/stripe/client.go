// Package stripe is a client for the hosted payment gateway: it creates
// payment intents for paid event registrations and verifies the signed
// webhooks the gateway delivers when a payment settles.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/pkg/httpretry"
)

// Client is a payment-gateway API client.
type Client struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    httpretry.HTTPDoer
}

// NewClient creates a payment-gateway client. Missing credentials are a
// configuration error and must abort startup.
func NewClient(cfg config.StripeConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("stripe: gateway is not enabled")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       cfg.BaseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}, nil
}

// CreateIntentParams describes one payment intent. Amount is in minor
// units (cents); metadata ties the intent back to the registration so
// the webhook can reconcile it.
type CreateIntentParams struct {
	Amount       int64
	Currency     string
	ReceiptEmail string
	Description  string
	Metadata     map[string]string
}

// CreatePaymentIntent creates a payment intent with automatic
// payment-method selection. The returned client secret is what the
// browser needs to collect payment; it is never stored server-side.
func (c *Client) CreatePaymentIntent(ctx context.Context, p CreateIntentParams) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(p.Amount, 10))
	form.Set("currency", strings.ToLower(p.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	if p.ReceiptEmail != "" {
		form.Set("receipt_email", p.ReceiptEmail)
	}
	if p.Description != "" {
		form.Set("description", p.Description)
	}
	for k, v := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent PaymentIntent
	if err := c.doForm(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}
	return &intent, nil
}

// GetPaymentIntent fetches the current state of a payment intent.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := c.doForm(ctx, http.MethodGet, "/v1/payment_intents/"+id, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) doForm(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var wrapped struct {
			Error *APIError `json:"error"`
		}
		if jsonErr := json.Unmarshal(data, &wrapped); jsonErr == nil && wrapped.Error != nil {
			wrapped.Error.StatusCode = resp.StatusCode
			return wrapped.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// APIError is a structured error response from the gateway.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}
