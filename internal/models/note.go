// Package models defines the domain types for zettelgraph.
package models

// Record is one raw note as produced by an ingestion source.
// File-backed records carry the note body; relational records carry
// only pre-resolved links.
type Record struct {
	ID    string   `json:"id"`
	File  string   `json:"file"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	Links []string `json:"links,omitempty"`
	Body  string   `json:"-"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path string `json:"path"`
}
