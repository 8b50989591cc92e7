package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brightpath/coaching-api/internal/pkg/httputil"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Public form endpoints share a per-IP submission limit.
		r.With(h.rateLimited).Post("/contact", h.HandleContact)
		r.With(h.rateLimited).Post("/newsletter", h.HandleNewsletterSubscribe)
		r.With(h.rateLimited).Post("/event-registration", h.HandleEventRegistration)

		r.Get("/newsletter", h.HandleNewsletterConfirm)
		r.Post("/payment-update", h.HandlePaymentUpdate)
		r.Post("/webhook", h.HandleWebhook)

		// Published-content reads
		r.Get("/events", h.HandleListEvents)
		r.Get("/events/{id}", h.HandleGetEvent)
		r.Get("/posts", h.HandleListPosts)
		r.Get("/posts/{slug}", h.HandleGetPost)
		r.Get("/programs", h.HandleListPrograms)
		r.Get("/services", h.HandleListServices)
		r.Get("/team", h.HandleListTeam)
		r.Get("/testimonials", h.HandleListTestimonials)
		r.Get("/sliders", h.HandleListSliders)
		r.Get("/company", h.HandleCompanyDetails)
	})

	return r
}

func (h *Handlers) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow(r.Context(), clientIP(r)) {
			httputil.Error(w, http.StatusTooManyRequests, "Too many submissions, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
