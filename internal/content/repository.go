package content

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/brightpath/coaching-api/internal/contentful"
)

// Repository serves typed, published site content. The company-details
// and slider reads are cached in-process with short TTLs; everything
// else hits the delivery API directly.
type Repository struct {
	client *contentful.Client

	companyCache *ttlCache[CompanyDetails]
	sliderCache  *ttlCache[[]Slide]
}

// NewRepository creates a content repository with the given cache TTLs.
func NewRepository(client *contentful.Client, companyTTL, sliderTTL time.Duration) *Repository {
	return &Repository{
		client:       client,
		companyCache: newTTLCache[CompanyDetails](companyTTL),
		sliderCache:  newTTLCache[[]Slide](sliderTTL),
	}
}

func decodeItems[T any](col *contentful.DeliveryCollection, set func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(col.Items))
	for _, item := range col.Items {
		var v T
		if err := item.Decode(&v); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", item.Sys.ID, err)
		}
		set(&v, item.Sys.ID)
		out = append(out, v)
	}
	return out, nil
}

func (r *Repository) list(ctx context.Context, contentType string, extra url.Values) (*contentful.DeliveryCollection, error) {
	params := url.Values{}
	params.Set("content_type", contentType)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	return r.client.GetPublishedEntries(ctx, params)
}

// ListEvents returns published events, soonest first.
func (r *Repository) ListEvents(ctx context.Context) ([]Event, error) {
	col, err := r.list(ctx, TypeEvent, url.Values{"order": {"fields.date"}})
	if err != nil {
		return nil, err
	}
	return decodeItems(col, func(e *Event, id string) { e.ID = id })
}

// GetEvent returns one published event by entry id.
func (r *Repository) GetEvent(ctx context.Context, id string) (*Event, error) {
	entry, err := r.client.GetPublishedEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	var event Event
	if err := entry.Decode(&event); err != nil {
		return nil, fmt.Errorf("decoding event %s: %w", id, err)
	}
	event.ID = entry.Sys.ID
	return &event, nil
}

// EventTitle returns the event's title for notification emails. A lookup
// failure falls back to a generic label rather than blocking the caller.
func (r *Repository) EventTitle(ctx context.Context, id string) string {
	event, err := r.GetEvent(ctx, id)
	if err != nil || event.Title == "" {
		return "your event"
	}
	return event.Title
}

// ListPosts returns published blog posts, newest first.
func (r *Repository) ListPosts(ctx context.Context) ([]BlogPost, error) {
	col, err := r.list(ctx, TypeBlogPost, url.Values{"order": {"-fields.publishDate"}})
	if err != nil {
		return nil, err
	}
	return decodeItems(col, func(p *BlogPost, id string) { p.ID = id })
}

// GetPostBySlug returns one published blog post by slug.
func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	col, err := r.list(ctx, TypeBlogPost, url.Values{"fields.slug": {slug}, "limit": {"1"}})
	if err != nil {
		return nil, err
	}
	if len(col.Items) == 0 {
		return nil, contentful.ErrNotFound
	}
	var post BlogPost
	if err := col.Items[0].Decode(&post); err != nil {
		return nil, fmt.Errorf("decoding post %s: %w", slug, err)
	}
	post.ID = col.Items[0].Sys.ID
	return &post, nil
}

// ListPrograms returns published coaching programs.
func (r *Repository) ListPrograms(ctx context.Context) ([]Program, error) {
	col, err := r.list(ctx, TypeProgram, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems(col, func(p *Program, id string) { p.ID = id })
}

// ListServices returns published services in display order.
func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	col, err := r.list(ctx, TypeService, nil)
	if err != nil {
		return nil, err
	}
	services, err := decodeItems(col, func(s *Service, id string) { s.ID = id })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(services, func(i, j int) bool { return services[i].Order < services[j].Order })
	return services, nil
}

// ListTeam returns published team members.
func (r *Repository) ListTeam(ctx context.Context) ([]TeamMember, error) {
	col, err := r.list(ctx, TypeTeamMember, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems(col, func(m *TeamMember, id string) { m.ID = id })
}

// ListTestimonials returns published testimonials.
func (r *Repository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	col, err := r.list(ctx, TypeTestimonial, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems(col, func(t *Testimonial, id string) { t.ID = id })
}

// ListSliders returns the homepage slides in display order, cached for
// the configured slider TTL (~5 minutes).
func (r *Repository) ListSliders(ctx context.Context) ([]Slide, error) {
	return r.sliderCache.get(func() ([]Slide, error) {
		col, err := r.list(ctx, TypeSlider, nil)
		if err != nil {
			return nil, err
		}
		slides, err := decodeItems(col, func(s *Slide, id string) { s.ID = id })
		if err != nil {
			return nil, err
		}
		sort.SliceStable(slides, func(i, j int) bool { return slides[i].Order < slides[j].Order })
		return slides, nil
	})
}

// GetCompanyDetails returns the company-details singleton, cached for
// the configured company TTL (~1 hour).
func (r *Repository) GetCompanyDetails(ctx context.Context) (CompanyDetails, error) {
	return r.companyCache.get(func() (CompanyDetails, error) {
		col, err := r.list(ctx, TypeCompanyDetails, url.Values{"limit": {"1"}})
		if err != nil {
			return CompanyDetails{}, err
		}
		if len(col.Items) == 0 {
			return CompanyDetails{}, contentful.ErrNotFound
		}
		var details CompanyDetails
		if err := col.Items[0].Decode(&details); err != nil {
			return CompanyDetails{}, fmt.Errorf("decoding company details: %w", err)
		}
		return details, nil
	})
}
