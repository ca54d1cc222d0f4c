package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/export"
	"github.com/starford/zettelgraph/internal/graph"
	"github.com/starford/zettelgraph/internal/graphservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *graphservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *graphservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps domain errors to HTTP statuses. Unexpected errors are
// logged and reported as internal errors.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrDataSource):
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("note source unavailable"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// parseQuery reads the sub-graph selection from the URL. Tags may be given
// as repeated "tag" parameters or as a comma-separated "tags" list.
func parseQuery(v url.Values) (graphservice.Query, error) {
	var q graphservice.Query
	for _, t := range v["tag"] {
		if t = strings.TrimSpace(t); t != "" {
			q.Tags = append(q.Tags, t)
		}
	}
	for _, t := range strings.Split(v.Get("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			q.Tags = append(q.Tags, t)
		}
	}
	var err error
	if q.Exclude, err = boolParam(v, "exclude"); err != nil {
		return q, err
	}
	if q.Regex, err = boolParam(v, "regex"); err != nil {
		return q, err
	}
	if q.RemoveOrphans, err = boolParam(v, "remove_orphans"); err != nil {
		return q, err
	}
	return q, nil
}

func boolParam(v url.Values, name string) (bool, error) {
	s := v.Get(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s: expected a boolean, got %q", apperr.ErrInvalidArgument, name, s)
	}
	return b, nil
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the note graph, optionally filtered by tag
//	@Tags			graph
//	@Produce		json
//	@Param			tags			query		string	false	"Comma-separated tags"
//	@Param			exclude			query		bool	false	"Drop notes having the tags"
//	@Param			regex			query		bool	false	"Match tags as start-anchored patterns"
//	@Param			remove_orphans	query		bool	false	"Drop notes without links"
//	@Success		200				{object}	GraphResponse
//	@Failure		400				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	g, err := h.svc.Select(r.Context(), q)
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, graphResponse(g))
}

func graphResponse(g *graph.Graph) GraphResponse {
	resp := GraphResponse{Nodes: []GraphNode{}, Links: []GraphLink{}}
	for _, n := range g.Nodes() {
		resp.Nodes = append(resp.Nodes, GraphNode{
			ID:    n.ID(),
			Title: n.Title(),
			File:  n.File(),
			Tags:  n.Tags(),
		})
	}
	for _, row := range g.Links() {
		for _, target := range row.Targets {
			if _, ok := g.Node(target); ok && target != row.ID {
				resp.Links = append(resp.Links, GraphLink{Source: row.ID, Target: target})
			}
		}
	}
	return resp
}

// Stats handles GET /api/stats.
//
//	@Summary		Count notes, links, orphans and tags
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	graphservice.Stats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, graphservice.StatsOf(g))
}

// Matrix handles GET /api/matrix.
//
//	@Summary		Compute the adjacency or distance matrix of a sub-graph
//	@Tags			graph
//	@Produce		json,text/csv
//	@Param			kind		query		string	false	"distance (default) or adjacency"
//	@Param			directed	query		bool	false	"Follow link direction"
//	@Param			reverse		query		bool	false	"Use incoming links"
//	@Param			labels		query		string	false	"title (default), id or file"
//	@Param			format		query		string	false	"json (default) or csv"
//	@Param			tags		query		string	false	"Comma-separated tags"
//	@Success		200			{object}	MatrixResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/matrix [get]
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q, err := parseQuery(v)
	if err != nil {
		writeError(w, "matrix", err)
		return
	}
	kind, err := graphservice.ParseMatrixKind(v.Get("kind"))
	if err != nil {
		writeError(w, "matrix", err)
		return
	}
	directed, err := boolParam(v, "directed")
	if err != nil {
		writeError(w, "matrix", err)
		return
	}
	reverse, err := boolParam(v, "reverse")
	if err != nil {
		writeError(w, "matrix", err)
		return
	}
	format := v.Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeJSON(w, http.StatusBadRequest, errorBody("format must be json or csv"))
		return
	}

	res, err := h.svc.Matrix(r.Context(), q, kind, directed, reverse)
	if err != nil {
		writeError(w, "matrix", err)
		return
	}
	labels, err := res.Labels(v.Get("labels"))
	if err != nil {
		writeError(w, "matrix", err)
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := export.WriteCSV(w, labels, res.Matrix); err != nil {
			slog.Error("csv write failed", slog.String("error", err.Error()))
		}
		return
	}

	writeJSON(w, http.StatusOK, MatrixResponse{
		Kind:     string(res.Kind),
		Directed: res.Directed,
		Reverse:  res.Reverse,
		IDs:      res.IDs,
		Labels:   labels,
		Rows:     export.JSONRows(res.Matrix),
	})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with links and backlinks
//	@Tags			notes
//	@Produce		json
//	@Param			tags	query		string	false	"Comma-separated tags"
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	g, err := h.svc.Select(r.Context(), q)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	notes := graphservice.Views(g)
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	view, err := h.svc.Note(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Orphans handles GET /api/orphans.
//
//	@Summary		List notes without links inside the selection
//	@Tags			graph
//	@Produce		json
//	@Param			tags	query		string	false	"Comma-separated tags"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/orphans [get]
func (h *Handler) Orphans(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, "orphans", err)
		return
	}
	q.RemoveOrphans = false
	g, err := h.svc.Select(r.Context(), q)
	if err != nil {
		writeError(w, "orphans", err)
		return
	}
	notes := []NoteView{}
	for _, n := range g.Orphans() {
		notes = append(notes, graphservice.ViewOf(g, n))
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Rebuild handles POST /api/rebuild.
//
//	@Summary		Re-read the note source and rebuild the graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	graphservice.Stats
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Rebuild(r.Context())
	if err != nil {
		writeError(w, "rebuild", err)
		return
	}
	writeJSON(w, http.StatusOK, graphservice.StatsOf(g))
}
