package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/zettelgraph/internal/graphservice"
	"github.com/starford/zettelgraph/internal/index"
	"github.com/starford/zettelgraph/internal/source"
	"github.com/starford/zettelgraph/internal/testutil"
)

// testEnv sets up a sample vault, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*graphservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestVault(t, testutil.SampleVault)
	logger := testutil.QuietLogger()
	svc := graphservice.New(source.NewFileSource(store, true, logger), logger)
	return svc, NewRouter(svc, authToken != "", authToken)
}

// testEnvIndexed serves the sample vault through the relational index.
func testEnvIndexed(t *testing.T) http.Handler {
	t.Helper()
	_, store := testutil.TestVault(t, testutil.SampleVault)
	db := testutil.TestDB(t, index.DriverPure)
	logger := testutil.QuietLogger()
	files := source.NewFileSource(store, true, logger)
	svc := graphservice.New(db, logger, graphservice.WithPrepare(func(ctx context.Context) error {
		return index.Sync(ctx, db, files, logger)
	}))
	return NewRouter(svc, false, "")
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestGraphEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/graph")
	if w.Code != http.StatusOK {
		t.Fatalf("graph status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[GraphResponse](t, w)
	if len(resp.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(resp.Nodes))
	}
	if len(resp.Links) != 3 {
		t.Errorf("links = %+v, want 3", resp.Links)
	}
}

func TestGraphEndpoint_FilteredLinksStayInside(t *testing.T) {
	_, router := testEnv(t, "")

	resp := decode[GraphResponse](t, get(t, router, "/graph?tag=project&tag=reading"))
	if len(resp.Nodes) != 3 {
		t.Fatalf("nodes = %+v", resp.Nodes)
	}
	if len(resp.Links) != 1 || resp.Links[0].Source != "gamma" || resp.Links[0].Target != "alpha" {
		t.Errorf("links = %+v, want gamma->alpha", resp.Links)
	}
}

func TestGraphEndpoint_BadBool(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/graph?exclude=maybe")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad bool = %d, want 400", w.Code)
	}
}

func TestGraphEndpoint_BadPattern(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/graph?tags=(&regex=true")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad pattern = %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	st := decode[graphservice.Stats](t, get(t, router, "/stats"))
	if st.Nodes != 5 || st.Edges != 3 || st.Orphans != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestMatrixEndpoint_JSON(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/matrix")
	if w.Code != http.StatusOK {
		t.Fatalf("matrix status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decode[MatrixResponse](t, w)
	if resp.Kind != "distance" || resp.Directed {
		t.Errorf("kind = %q directed = %v", resp.Kind, resp.Directed)
	}
	if strings.Join(resp.Labels, ",") != "Alpha,Beta,Delta,Epsilon,Gamma" {
		t.Errorf("labels = %v", resp.Labels)
	}
	if len(resp.Rows) != 5 {
		t.Fatalf("rows = %d", len(resp.Rows))
	}
	alpha := resp.Rows[0]
	if *alpha[0] != 0 || *alpha[1] != 1 || alpha[3] != nil {
		t.Errorf("alpha row = %v", alpha)
	}
}

func TestMatrixEndpoint_CSV(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/matrix?kind=adjacency&directed=true&reverse=true&labels=id&format=csv&remove_orphans=true")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	want := ",alpha,beta,delta,gamma\n" +
		"alpha,inf,inf,inf,1\n" +
		"beta,1,inf,inf,inf\n" +
		"delta,1,inf,inf,inf\n" +
		"gamma,inf,inf,inf,inf\n"
	if got := w.Body.String(); got != want {
		t.Errorf("csv =\n%s\nwant\n%s", got, want)
	}
}

func TestMatrixEndpoint_BadArguments(t *testing.T) {
	_, router := testEnv(t, "")
	for _, target := range []string{
		"/matrix?kind=weighted",
		"/matrix?labels=path",
		"/matrix?format=xml",
		"/matrix?directed=2",
	} {
		if w := get(t, router, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", target, w.Code)
		}
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")
	resp := decode[NoteListResponse](t, get(t, router, "/notes?tags=proj&regex=true"))
	if resp.Total != 2 || resp.Notes[0].ID != "alpha" || resp.Notes[1].ID != "epsilon" {
		t.Errorf("notes = %+v", resp)
	}
}

func TestGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/notes/alpha")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	view := decode[NoteView](t, w)
	if view.Title != "Alpha" || view.File != "alpha.md" {
		t.Errorf("view = %+v", view)
	}
	if strings.Join(view.Backlinks, ",") != "gamma" {
		t.Errorf("backlinks = %v", view.Backlinks)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := get(t, router, "/notes/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
}

func TestOrphansEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	resp := decode[NoteListResponse](t, get(t, router, "/orphans"))
	if resp.Total != 1 || resp.Notes[0].ID != "epsilon" {
		t.Errorf("orphans = %+v", resp)
	}
}

func TestRebuildEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("rebuild = %d, body = %s", w.Code, w.Body.String())
	}
	g, _ := svc.Graph(context.Background())
	if g.Len() != 5 {
		t.Errorf("len = %d", g.Len())
	}
}

func TestIndexedSourceServesSameGraph(t *testing.T) {
	router := testEnvIndexed(t)

	resp := decode[GraphResponse](t, get(t, router, "/graph"))
	if len(resp.Nodes) != 5 || len(resp.Links) != 3 {
		t.Errorf("graph = %+v", resp)
	}
	view := decode[NoteView](t, get(t, router, "/notes/gamma"))
	if view.Title != "Gamma" || strings.Join(view.Tags, ",") != "reading" {
		t.Errorf("gamma = %+v", view)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/graph", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed graph = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := get(t, router, "/notes")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := get(t, router, "/notes")
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_SchemeCaseInsensitive(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("lower-case scheme = %d, want 200", w.Code)
	}
}
