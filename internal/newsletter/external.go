package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/pkg/httpretry"
)

// ExternalClient registers confirmed-interest contacts with a
// Brevo-compatible email-marketing API. It is optional wiring: the
// subscription flow works the same when it is nil.
type ExternalClient struct {
	apiKey     string
	baseURL    string
	listID     int64
	httpClient httpretry.HTTPDoer
}

// NewExternalClient builds a client from config, or returns nil when
// the integration is disabled or has no API key.
func NewExternalClient(cfg config.NewsletterConfig) *ExternalClient {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ExternalClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		listID:  cfg.ListID,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: timeout,
		}, 2),
	}
}

type externalContactRequest struct {
	Email         string            `json:"email"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	ListIDs       []int64           `json:"listIds,omitempty"`
	UpdateEnabled bool              `json:"updateEnabled"`
}

type externalContactResponse struct {
	ID int64 `json:"id"`
}

// RegisterContact upserts the contact and returns its external id.
func (c *ExternalClient) RegisterContact(ctx context.Context, email, name string) (string, error) {
	reqBody := externalContactRequest{
		Email:         email,
		ListIDs:       []int64{c.listID},
		UpdateEnabled: true,
	}
	if name != "" {
		reqBody.Attributes = map[string]string{"FIRSTNAME": name}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding contact request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("registering contact: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading contact response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("contact API returned status %d: %s", resp.StatusCode, string(body))
	}

	// Upserts of an existing contact come back 204 with no body.
	if len(body) == 0 {
		return "", nil
	}
	var decoded externalContactResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decoding contact response: %w", err)
	}
	if decoded.ID == 0 {
		return "", nil
	}
	return strconv.FormatInt(decoded.ID, 10), nil
}
