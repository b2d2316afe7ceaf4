package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/basetag/internal/noteservice"
	"github.com/starford/basetag/internal/settings"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, store *settings.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNoteTags)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// MountPages adds the reading-view routes to r: rendered notes under
// /notes/* and vault attachments under /attachments/*.
func MountPages(r chi.Router, svc *noteservice.Service, store *settings.Store, vaultRoot string) {
	h := NewHandler(svc, store)
	ah := NewAttachmentHandler(vaultRoot)
	r.Get("/notes/*", h.ServeNote)
	r.Get("/attachments/*", ah.ServeFile)
}
