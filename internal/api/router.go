package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/zettelgraph/internal/graphservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *graphservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Graph queries.
	r.Get("/graph", h.Graph)
	r.Get("/stats", h.Stats)
	r.Get("/matrix", h.Matrix)
	r.Get("/orphans", h.Orphans)
	r.Post("/rebuild", h.Rebuild)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)

	return r
}
