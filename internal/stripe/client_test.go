package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		secretKey:     "sk_test_123",
		webhookSecret: "whsec_test",
		baseURL:       server.URL,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "5000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "jane@example.com", r.PostForm.Get("receipt_email"))
		assert.Equal(t, "evt-1", r.PostForm.Get("metadata[eventId]"))
		assert.Equal(t, "Leadership Summit", r.PostForm.Get("metadata[eventTitle]"))

		json.NewEncoder(w).Encode(PaymentIntent{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret_abc",
			Amount:       5000,
			Currency:     "usd",
			Status:       "requires_payment_method",
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	intent, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{
		Amount:       5000,
		Currency:     "USD",
		ReceiptEmail: "jane@example.com",
		Metadata: map[string]string{
			"eventId":    "evt-1",
			"eventTitle": "Leadership Summit",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(5000), intent.Amount)
}

func TestCreatePaymentIntentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.CreatePaymentIntent(context.Background(), CreateIntentParams{Amount: 5000, Currency: "USD"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Equal(t, "card_declined", apiErr.Code)
}

func TestGetPaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		json.NewEncoder(w).Encode(PaymentIntent{ID: "pi_123", Status: "succeeded"})
	}))
	defer server.Close()

	client := newTestClient(server)
	intent, err := client.GetPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", intent.Status)
}
