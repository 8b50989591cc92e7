package registration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/coaching-api/internal/config"
	"github.com/brightpath/coaching-api/internal/contentful"
)

// fakeRepo is a minimal stand-in for the content repository's
// management API: one entry space with real version counters, so
// optimistic-concurrency races can be simulated deterministically.
type fakeRepo struct {
	mu      sync.Mutex
	entries map[string]*contentful.Entry
	nextID  int

	// conflictUpdates / conflictPublishes force this many 409s before
	// accepting the corresponding write, mimicking a concurrent writer.
	conflictUpdates   int
	conflictPublishes int

	updateCalls  int
	publishCalls int
	getCalls     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: map[string]*contentful.Entry{}, nextID: 1}
}

func (f *fakeRepo) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		prefix := "/spaces/space-1/environments/master/entries"
		path := strings.TrimPrefix(r.URL.Path, prefix)

		switch {
		case r.Method == http.MethodPost && path == "":
			var payload struct {
				Fields contentful.Fields `json:"fields"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			id := "reg-" + strconv.Itoa(f.nextID)
			f.nextID++
			entry := &contentful.Entry{
				Sys:    contentful.Sys{ID: id, Type: "Entry", Version: 1},
				Fields: payload.Fields,
			}
			f.entries[id] = entry
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(entry)

		case r.Method == http.MethodGet:
			f.getCalls++
			id := strings.TrimPrefix(path, "/")
			entry, ok := f.entries[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(entry)

		case r.Method == http.MethodPut && strings.HasSuffix(path, "/published"):
			f.publishCalls++
			id := strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/published")
			entry := f.entries[id]
			version, _ := strconv.Atoi(r.Header.Get("X-Contentful-Version"))
			if f.conflictPublishes > 0 || version != entry.Sys.Version {
				if f.conflictPublishes > 0 {
					f.conflictPublishes--
					// a concurrent writer advanced the entry
					entry.Sys.Version++
				}
				w.WriteHeader(http.StatusConflict)
				return
			}
			entry.Sys.Version++
			entry.Sys.PublishedVersion = version
			json.NewEncoder(w).Encode(entry)

		case r.Method == http.MethodPut:
			f.updateCalls++
			id := strings.TrimPrefix(path, "/")
			entry := f.entries[id]
			version, _ := strconv.Atoi(r.Header.Get("X-Contentful-Version"))
			if f.conflictUpdates > 0 || version != entry.Sys.Version {
				if f.conflictUpdates > 0 {
					f.conflictUpdates--
					entry.Sys.Version++
				}
				w.WriteHeader(http.StatusConflict)
				return
			}
			var payload struct {
				Fields contentful.Fields `json:"fields"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			entry.Fields = payload.Fields
			entry.Sys.Version++
			json.NewEncoder(w).Encode(entry)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestStore(t *testing.T, repo *fakeRepo) *Store {
	t.Helper()
	server := httptest.NewServer(repo.handler())
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
	return NewStore(client)
}

func sampleRegistration() Registration {
	return Registration{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		EventID:        "evt-1",
		EventTitle:     "Leadership Summit",
		SubmissionDate: time.Now(),
		Amount:         50,
		Currency:       "USD",
		PaymentStatus:  PaymentPending,
		Status:         StatusNew,
	}
}

func TestStoreCreatePublishes(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)
	assert.Equal(t, "reg-1", id)
	assert.Equal(t, 1, repo.publishCalls, "created entries are published immediately")

	reg, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", reg.Name)
	assert.Equal(t, PaymentPending, reg.PaymentStatus)
	assert.Equal(t, StatusNew, reg.Status)
	assert.Equal(t, 50.0, reg.Amount)
}

func TestAttachPaymentReference(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)

	require.NoError(t, store.AttachPaymentReference(context.Background(), id, "pi_123"))

	reg, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", reg.PaymentReference)
	assert.Equal(t, PaymentPending, reg.PaymentStatus, "other fields survive the read-modify-write")
}

func TestAttachPaymentReferenceRecoversFromOneConflict(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)

	repo.conflictUpdates = 1
	require.NoError(t, store.AttachPaymentReference(context.Background(), id, "pi_123"))

	reg, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", reg.PaymentReference)
	assert.Equal(t, 2, repo.updateCalls, "one conflict costs exactly one extra update")
}

func TestAttachPaymentReferenceGivesUpAfterTwoConflicts(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)

	repo.conflictUpdates = 2
	err = store.AttachPaymentReference(context.Background(), id, "pi_123")
	assert.ErrorIs(t, err, contentful.ErrVersionConflict)
	assert.Equal(t, 2, repo.updateCalls, "budget is one retry, not a loop")
}

func TestPublishConflictHasOwnRetryBudget(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)

	// One conflict in each phase: both resolve independently.
	repo.conflictUpdates = 1
	repo.conflictPublishes = 1
	require.NoError(t, store.AttachPaymentReference(context.Background(), id, "pi_123"))
}

func TestSetPaymentSingleAttemptBudget(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)

	repo.conflictUpdates = 1
	err = store.SetPayment(context.Background(), id, PaymentPaid, "pi_123", time.Now(), 1)
	assert.ErrorIs(t, err, contentful.ErrVersionConflict,
		"webhook-path writes do not retry conflicts")
}

func TestSetPaymentRecordsOutcome(t *testing.T) {
	repo := newFakeRepo()
	store := newTestStore(t, repo)

	id, err := store.Create(context.Background(), sampleRegistration())
	require.NoError(t, err)

	paidAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetPayment(context.Background(), id, PaymentPaid, "pi_123", paidAt, 2))

	reg, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, reg.PaymentStatus)
	assert.Equal(t, "pi_123", reg.PaymentReference)
	assert.Equal(t, paidAt, reg.PaymentDate.UTC())
}
