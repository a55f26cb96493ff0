package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quicknote/internal/auth"
	"github.com/starford/quicknote/internal/noteservice"
	"github.com/starford/quicknote/internal/ratelimit"
)

// NewRouter creates a chi router with all API routes mounted. Every route
// requires a Bearer token known to registry.
// limiter, if non-nil, throttles tag suggestions per user.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, registry *auth.Registry, limiter *ratelimit.RateLimiter, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(registry))

	r.Get("/session", h.Session)

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Suggestions are rate limited per user.
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(ratelimit.Middleware(limiter, currentUser))
		}
		r.Post("/suggest-tags", h.SuggestTags)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
