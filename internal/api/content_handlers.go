package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/coaching-api/internal/content"
	"github.com/brightpath/coaching-api/internal/contentful"
	"github.com/brightpath/coaching-api/internal/pkg/httputil"
)

// ContentReader is the published-content surface the read endpoints use.
type ContentReader interface {
	ListEvents(ctx context.Context) ([]content.Event, error)
	GetEvent(ctx context.Context, id string) (*content.Event, error)
	ListPosts(ctx context.Context) ([]content.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*content.BlogPost, error)
	ListPrograms(ctx context.Context) ([]content.Program, error)
	ListServices(ctx context.Context) ([]content.Service, error)
	ListTeam(ctx context.Context) ([]content.TeamMember, error)
	ListTestimonials(ctx context.Context) ([]content.Testimonial, error)
	ListSliders(ctx context.Context) ([]content.Slide, error)
	GetCompanyDetails(ctx context.Context) (content.CompanyDetails, error)
}

// respondList writes a list result, mapping an empty slice to [] not null.
func respondList[T any](w http.ResponseWriter, items []T, err error) {
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	httputil.OK(w, items)
}

func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListEvents(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.content.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, contentful.ErrNotFound) {
			httputil.NotFound(w, "Event not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, event)
}

func (h *Handlers) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListPosts(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, contentful.ErrNotFound) {
			httputil.NotFound(w, "Post not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, post)
}

func (h *Handlers) HandleListPrograms(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListPrograms(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListServices(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleListTeam(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListTeam(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListTestimonials(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleListSliders(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListSliders(r.Context())
	respondList(w, items, err)
}

func (h *Handlers) HandleCompanyDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.content.GetCompanyDetails(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, details)
}
