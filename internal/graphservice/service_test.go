package graphservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/starford/zettelgraph/internal/apperr"
	"github.com/starford/zettelgraph/internal/models"
)

type staticSource struct {
	records []models.Record
	err     error
	calls   int
}

func (s *staticSource) Records(context.Context) ([]models.Record, error) {
	s.calls++
	return s.records, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService(t *testing.T) (*Service, *staticSource) {
	t.Helper()
	src := &staticSource{records: []models.Record{
		{ID: "n1", Title: "One", Tags: []string{"project"}, Links: []string{"n2"}},
		{ID: "n2", Title: "Two", Links: []string{"n3"}},
		{ID: "n3", Title: "Three", Tags: []string{"project"}},
		{ID: "n4", Title: "Four", Tags: []string{"project"}},
		{File: "broken.md"},
	}}
	return New(src, quietLogger()), src
}

func TestGraph_BuildsOnce(t *testing.T) {
	svc, src := testService(t)
	ctx := context.Background()
	if svc.Ready() {
		t.Fatal("ready before first build")
	}
	g1, err := svc.Graph(ctx)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	g2, _ := svc.Graph(ctx)
	if !svc.Ready() {
		t.Error("not ready after build")
	}
	if g1 != g2 || src.calls != 1 {
		t.Errorf("expected one build, got %d", src.calls)
	}
	if g1.Len() != 4 {
		t.Errorf("len = %d, want 4", g1.Len())
	}
}

func TestRebuild_Metrics(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := promtest.ToFloat64(svc.metrics.nodes); got != 4 {
		t.Errorf("nodes gauge = %v, want 4", got)
	}
	if got := promtest.ToFloat64(svc.metrics.edges); got != 2 {
		t.Errorf("edges gauge = %v, want 2", got)
	}
	if got := promtest.ToFloat64(svc.metrics.dropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := promtest.ToFloat64(svc.metrics.builds.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok builds = %v, want 1", got)
	}
}

func TestRebuild_ErrorKeepsPreviousGraph(t *testing.T) {
	svc, src := testService(t)
	ctx := context.Background()
	before, _ := svc.Graph(ctx)

	src.err = apperr.ErrDataSource
	if _, err := svc.Rebuild(ctx); !errors.Is(err, apperr.ErrDataSource) {
		t.Fatalf("err = %v, want ErrDataSource", err)
	}
	after, _ := svc.Graph(ctx)
	if after != before {
		t.Error("failed rebuild replaced the graph")
	}
	if got := promtest.ToFloat64(svc.metrics.builds.WithLabelValues("error")); got != 1 {
		t.Errorf("error builds = %v, want 1", got)
	}
}

func TestRebuild_PrepareRunsAndFailureIsTolerated(t *testing.T) {
	src := &staticSource{records: []models.Record{{ID: "a"}}}
	prepared := 0
	svc := New(src, quietLogger(), WithPrepare(func(context.Context) error {
		prepared++
		return errors.New("sync failed")
	}))
	g, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if prepared != 1 || g.Len() != 1 {
		t.Errorf("prepared = %d, len = %d", prepared, g.Len())
	}
}

func TestSelect_FilterThenOrphans(t *testing.T) {
	svc, _ := testService(t)
	g, err := svc.Select(context.Background(), Query{Tags: []string{"project"}, RemoveOrphans: true})
	if err != nil {
		t.Fatal(err)
	}
	// Filtered: n1, n3, n4. n1 still links to n2 (outside the sub-graph); n3 and n4 are orphans there.
	if got := strings.Join(g.IDs(), ","); got != "n1" {
		t.Errorf("ids = %q, want n1", got)
	}

	g, err = svc.Select(context.Background(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 4 {
		t.Errorf("unfiltered len = %d, want 4", g.Len())
	}
}

func TestSelect_BadPattern(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.Select(context.Background(), Query{Tags: []string{"["}, Regex: true})
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestMatrix(t *testing.T) {
	svc, _ := testService(t)
	res, err := svc.Matrix(context.Background(), Query{}, KindDistance, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.IDs) != 4 || res.Titles[0] != "One" {
		t.Errorf("labels = %v / %v", res.IDs, res.Titles)
	}
	if res.Matrix.At(0, 2) != 2 || !math.IsInf(res.Matrix.At(2, 0), 1) {
		t.Errorf("dist(n1,n3) = %v, dist(n3,n1) = %v", res.Matrix.At(0, 2), res.Matrix.At(2, 0))
	}

	adj, err := svc.Matrix(context.Background(), Query{}, KindAdjacency, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if adj.Matrix.At(1, 0) != 1 || !math.IsInf(adj.Matrix.At(0, 0), 1) {
		t.Errorf("adjacency row 1 = %v", adj.Matrix.Rows()[1])
	}
}

func TestParseMatrixKind(t *testing.T) {
	if k, err := ParseMatrixKind(""); err != nil || k != KindDistance {
		t.Errorf("empty kind = %q, %v", k, err)
	}
	if _, err := ParseMatrixKind("laplacian"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestNote(t *testing.T) {
	svc, _ := testService(t)
	n, err := svc.Note(context.Background(), "n2")
	if err != nil {
		t.Fatal(err)
	}
	if n.Title != "Two" || strings.Join(n.Backlinks, ",") != "n1" || strings.Join(n.LinksTo, ",") != "n3" {
		t.Errorf("note = %+v", n)
	}
	if _, err := svc.Note(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStatsOf(t *testing.T) {
	svc, _ := testService(t)
	g, err := svc.Graph(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	st := StatsOf(g)
	if st.Nodes != 4 || st.Edges != 2 || st.Orphans != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.Tags["project"] != 3 {
		t.Errorf("project count = %d, want 3", st.Tags["project"])
	}
	if len(st.Tags) != 1 {
		t.Errorf("tags = %v, want only project", st.Tags)
	}
}

func TestViews_MatrixOrder(t *testing.T) {
	svc, _ := testService(t)
	g, _ := svc.Graph(context.Background())
	views := Views(g)
	if len(views) != 4 || views[0].ID != "n1" || views[3].ID != "n4" {
		t.Fatalf("views = %+v", views)
	}
	if strings.Join(views[1].Backlinks, ",") != "n1" {
		t.Errorf("n2 backlinks = %v", views[1].Backlinks)
	}
}

func TestMatrixResult_Labels(t *testing.T) {
	res := &MatrixResult{IDs: []string{"a"}, Titles: []string{"A"}, Files: []string{"a.md"}}
	for by, want := range map[string]string{"": "A", "title": "A", "id": "a", "file": "a.md"} {
		got, err := res.Labels(by)
		if err != nil || got[0] != want {
			t.Errorf("Labels(%q) = %v, %v", by, got, err)
		}
	}
	if _, err := res.Labels("path"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("unknown label kind error = %v", err)
	}
}
