// Package contentful is a client for the hosted content repository that
// backs the site: every entity (blog post, event, registration, contact
// submission, newsletter subscriber, ...) lives there as a versioned
// entry. Writes go through the management API; the public read surface
// goes through the delivery API.
package contentful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/pkg/httpretry"
)

// Client issues management and delivery calls for one space/environment.
type Client struct {
	spaceID         string
	environment     string
	managementToken string
	deliveryToken   string
	managementURL   string
	deliveryURL     string
	httpClient      httpretry.HTTPDoer
}

// NewClient creates a content-repository client. Missing credentials are
// a configuration error and must abort startup; there is no degraded mode.
func NewClient(cfg config.ContentfulConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		spaceID:         cfg.SpaceID,
		environment:     cfg.Environment,
		managementToken: cfg.ManagementToken,
		deliveryToken:   cfg.DeliveryToken,
		managementURL:   cfg.ManagementURL,
		deliveryURL:     cfg.DeliveryURL,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}, nil
}

// envPath returns the space/environment path prefix shared by both APIs.
func (c *Client) envPath() string {
	return fmt.Sprintf("/spaces/%s/environments/%s", c.spaceID, c.environment)
}

// doManagement issues a management-API request and decodes the response
// into out (when non-nil). headers may carry X-Contentful-Version and
// X-Contentful-Content-Type.
func (c *Client) doManagement(ctx context.Context, method, path string, headers map[string]string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.managementURL+c.envPath()+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.managementToken)
	req.Header.Set("Content-Type", "application/vnd.contentful.management.v1+json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.execute(req, out)
}

// doDelivery issues a delivery-API request and decodes the response into out.
func (c *Client) doDelivery(ctx context.Context, path string, params url.Values, out any) error {
	fullURL := c.deliveryURL + c.envPath() + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.deliveryToken)

	return c.execute(req, out)
}

func (c *Client) execute(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrVersionConflict)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
