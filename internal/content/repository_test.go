package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/contentful"
)

func deliveryItem(id string, fields map[string]any) map[string]any {
	return map[string]any{
		"sys":    map[string]any{"id": id},
		"fields": fields,
	}
}

func newTestRepository(t *testing.T, handler http.HandlerFunc) (*Repository, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := contentful.NewClient(config.ContentfulConfig{
		SpaceID:         "space-1",
		Environment:     "master",
		ManagementToken: "mgmt",
		DeliveryToken:   "cdn",
		ManagementURL:   server.URL,
		DeliveryURL:     server.URL,
		TimeoutSeconds:  5,
	})
	require.NoError(t, err)

	return NewRepository(client, time.Hour, 5*time.Minute), server
}

func TestListEvents(t *testing.T) {
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "event", r.URL.Query().Get("content_type"))
		assert.Equal(t, "fields.date", r.URL.Query().Get("order"))
		json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"items": []any{
				deliveryItem("evt-1", map[string]any{
					"title": "Leadership Summit", "price": 50, "currency": "USD",
					"date": "2026-10-01T09:00:00Z",
				}),
				deliveryItem("evt-2", map[string]any{"title": "Open House"}),
			},
		})
	})

	events, err := repo.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "Leadership Summit", events[0].Title)
	assert.Equal(t, 50.0, events[0].Price)
	assert.Equal(t, 0.0, events[1].Price, "free event has zero price")
}

func TestEventTitleFallsBack(t *testing.T) {
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"sys":{"id":"NotFound"}}`))
	})

	assert.Equal(t, "your event", repo.EventTitle(context.Background(), "missing"))
}

func TestGetPostBySlug(t *testing.T) {
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "growth-mindset", r.URL.Query().Get("fields.slug"))
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"items": []any{
				deliveryItem("post-1", map[string]any{"title": "Growth Mindset", "slug": "growth-mindset"}),
			},
		})
	})

	post, err := repo.GetPostBySlug(context.Background(), "growth-mindset")
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "Growth Mindset", post.Title)
}

func TestGetPostBySlugNotFound(t *testing.T) {
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"total": 0, "items": []any{}})
	})

	_, err := repo.GetPostBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, contentful.ErrNotFound)
}

func TestListSlidersCachedAndOrdered(t *testing.T) {
	var calls int32
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"total": 2,
			"items": []any{
				deliveryItem("s-2", map[string]any{"title": "Second", "order": 2}),
				deliveryItem("s-1", map[string]any{"title": "First", "order": 1}),
			},
		})
	})

	slides, err := repo.ListSliders(context.Background())
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "First", slides[0].Title)

	// Second call is served from cache
	_, err = repo.ListSliders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetCompanyDetailsCached(t *testing.T) {
	var calls int32
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"total": 1,
			"items": []any{
				deliveryItem("company", map[string]any{
					"name":  "BrightPath Coaching",
					"email": "hello@brightpath.example",
				}),
			},
		})
	})

	details, err := repo.GetCompanyDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BrightPath Coaching", details.Name)

	_, err = repo.GetCompanyDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
