package api

import "github.com/starford/zettelgraph/internal/graphservice"

// NoteView is a note with its links and backlinks (aliased from the domain layer).
type NoteView = graphservice.NoteView

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteView `json:"notes" validate:"required"`
	Total int        `json:"total" example:"42" validate:"required"`
}

// GraphNode is a node in the note graph.
type GraphNode struct {
	ID    string   `json:"id" example:"7f9c2b1e-0d4a-4c51-9a8e-3f1d2c6b8a90" validate:"required"`
	Title string   `json:"title,omitempty" example:"Reading list"`
	File  string   `json:"file,omitempty" example:"reading.org"`
	Tags  []string `json:"tags" example:"reading,books"`
}

// GraphLink is a directed edge in the note graph.
type GraphLink struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// GraphResponse wraps the note graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// MatrixResponse carries a matrix in row order. Unreachable or unlinked
// cells are null.
type MatrixResponse struct {
	Kind     string       `json:"kind" example:"distance" validate:"required"`
	Directed bool         `json:"directed"`
	Reverse  bool         `json:"reverse"`
	IDs      []string     `json:"ids" validate:"required"`
	Labels   []string     `json:"labels" validate:"required"`
	Rows     [][]*float64 `json:"rows" validate:"required"`
}
