// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes note graph queries for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/export"
	"github.com/starford/zettelgraph/internal/graphservice"
)

const formatURI = "zettelgraph://note-format"

// Server wraps the MCP server with graph tools.
type Server struct {
	mcp *server.MCPServer
	svc *graphservice.Service
}

// New creates a new MCP server with all graph tools registered.
func New(svc *graphservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"zettelgraph",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("graph_stats",
		mcp.WithDescription("Count notes, links and orphans, and how often each tag is used."),
	), s.graphStats)

	s.mcp.AddTool(mcp.NewTool("list_notes", withQueryArgs(
		mcp.WithDescription("List notes with their tags, outgoing links and backlinks, optionally filtered by tag."),
	)...), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read one note's title, file, tags, links and backlinks by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("distance_matrix", withQueryArgs(
		mcp.WithDescription("Compute the shortest-path distance (or adjacency) matrix of the selected notes as CSV. "+
			"Unreachable pairs are written as inf."),
		mcp.WithString("kind", mcp.Description("distance (default) or adjacency")),
		mcp.WithBoolean("directed", mcp.Description("Follow links in their direction only")),
		mcp.WithBoolean("reverse", mcp.Description("Use incoming instead of outgoing links (directed only)")),
		mcp.WithString("labels", mcp.Description("Row and column labels: title (default), id or file")),
	)...), s.distanceMatrix)

	s.mcp.AddTool(mcp.NewTool("orphans", withTagArgs(
		mcp.WithDescription("List notes that neither link to nor are linked from any other selected note."),
	)...), s.orphans)

	s.mcp.AddTool(mcp.NewTool("rebuild_graph",
		mcp.WithDescription("Re-read the note source and rebuild the graph."),
	), s.rebuildGraph)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns how notes must be written for the graph to pick up ids, titles, tags and links."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format",
			mcp.WithResourceDescription("Accepted Org and Markdown note structure."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// withTagArgs appends the tag filter arguments to opts.
func withTagArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts,
		mcp.WithString("tags", mcp.Description("Comma-separated tags to filter by (empty for no filter)")),
		mcp.WithBoolean("exclude", mcp.Description("Drop notes having any of the tags instead of keeping them")),
		mcp.WithBoolean("regex", mcp.Description("Treat tags as regular expressions matched at the start of each tag")),
	)
}

func withQueryArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(withTagArgs(opts...),
		mcp.WithBoolean("remove_orphans", mcp.Description("Drop notes without links inside the selection")),
	)
}

func queryFrom(req mcp.CallToolRequest) graphservice.Query {
	return graphservice.Query{
		Tags:          splitList(req.GetString("tags", "")),
		Exclude:       req.GetBool("exclude", false),
		Regex:         req.GetBool("regex", false),
		RemoveOrphans: req.GetBool("remove_orphans", false),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) graphStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.Graph(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(graphservice.StatsOf(g))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.Select(ctx, queryFrom(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(graphservice.Views(g))
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.svc.Note(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (s *Server) distanceMatrix(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := graphservice.ParseMatrixKind(req.GetString("kind", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Matrix(ctx, queryFrom(req), kind,
		req.GetBool("directed", false), req.GetBool("reverse", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labels, err := res.Labels(req.GetString("labels", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, labels, res.Matrix); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) orphans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := queryFrom(req)
	q.RemoveOrphans = false
	g, err := s.svc.Select(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	orphans := g.Orphans()
	if len(orphans) == 0 {
		return mcp.NewToolResultText("no orphans found"), nil
	}
	lines := make([]string, len(orphans))
	for i, n := range orphans {
		lines[i] = n.ID() + "\t" + n.Title()
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) rebuildGraph(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.svc.Rebuild(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(graphservice.StatsOf(g))
}

func (s *Server) getNoteFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
