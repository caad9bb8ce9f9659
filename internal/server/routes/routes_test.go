package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/store"
	"github.com/synapse-kb/synapse/backend/pkg/store/memory"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func newTestContext(t *testing.T, method, path, body string, app *middleware.App, user *middleware.AppUser) (*middleware.AppContext, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()

	return &middleware.AppContext{Context: e.NewContext(req, rec), App: app, User: user}, rec
}

func newMemoryApp(t *testing.T) *middleware.App {
	t.Helper()

	app := &middleware.App{}
	app.RegisterStore("memory", memory.NewStore())
	return app
}

// brokenStore fails every operation. Used to exercise degraded health.
type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) CreateNode(context.Context, string, map[string]any, int64) (graph.NodeRecord, error) {
	return graph.NodeRecord{}, errStoreDown
}

func (brokenStore) CreateRelationship(context.Context, string, string, string, map[string]any, int64) (graph.RelationshipRecord, error) {
	return graph.RelationshipRecord{}, errStoreDown
}

func (brokenStore) NodesByOwner(context.Context, int64) ([]graph.NodeRecord, error) {
	return nil, errStoreDown
}

func (brokenStore) RelationshipsByOwner(context.Context, int64) ([]graph.RelationshipRecord, error) {
	return nil, errStoreDown
}

func (brokenStore) SearchSubgraph(context.Context, int64, string, int) (graph.GraphData, error) {
	return graph.Empty(), errStoreDown
}

func (brokenStore) DeleteOwner(context.Context, int64) error { return errStoreDown }
func (brokenStore) Verify(context.Context) error             { return errStoreDown }
func (brokenStore) Close(context.Context) error              { return nil }

var _ store.GraphStore = brokenStore{}

func TestHealthHandlerConnected(t *testing.T) {
	t.Parallel()

	app := newMemoryApp(t)
	c, rec := newTestContext(t, http.MethodGet, "/api/health", "", app, nil)

	if err := HealthHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Status string `json:"status"`
		Neo4j  string `json:"neo4j"`
		LLM    string `json:"llm"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Neo4j != "connected" || resp.LLM != "unavailable" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHealthHandlerDisconnected(t *testing.T) {
	t.Parallel()

	app := &middleware.App{}
	app.RegisterStore("neo4j", brokenStore{})
	c, rec := newTestContext(t, http.MethodGet, "/api/health", "", app, nil)

	if err := HealthHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Neo4j string `json:"neo4j"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Neo4j != "disconnected" {
		t.Errorf("neo4j = %q, want disconnected", resp.Neo4j)
	}
}

func TestQueryGraphRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "empty string", body: `{"query": ""}`},
		{name: "whitespace only", body: `{"query": "   "}`},
		{name: "missing field", body: `{}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// A broken store proves the request is rejected before any
			// store access happens.
			app := &middleware.App{}
			app.RegisterStore("neo4j", brokenStore{})
			user := &middleware.AppUser{UserID: 1}
			c, rec := newTestContext(t, http.MethodPost, "/api/graph/query", tt.body, app, user)

			if err := QueryGraphHandler(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetGraphOverviewHandler(t *testing.T) {
	t.Parallel()

	app := newMemoryApp(t)
	ctx := context.Background()
	s := app.GraphStore()

	doc, err := s.CreateNode(ctx, "Document", map[string]any{"name": "notes.txt"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	entity, err := s.CreateNode(ctx, "Organization", map[string]any{"name": "Microsoft"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRelationship(ctx, doc.ID, entity.ID, "MENTIONS", nil, 1); err != nil {
		t.Fatal(err)
	}
	// another user's data must not leak into the overview
	if _, err := s.CreateNode(ctx, "Concept", map[string]any{"name": "Other"}, 2); err != nil {
		t.Fatal(err)
	}

	user := &middleware.AppUser{UserID: 1}
	c, rec := newTestContext(t, http.MethodGet, "/api/graph/overview", "", app, user)

	if err := GetGraphOverviewHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		GraphData graph.GraphData `json:"graphData"`
		Stats     struct {
			NodeCount         int `json:"nodeCount"`
			RelationshipCount int `json:"relationshipCount"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stats.NodeCount != 2 || resp.Stats.RelationshipCount != 1 {
		t.Errorf("stats = %+v, want 2 nodes and 1 relationship", resp.Stats)
	}
	if len(resp.GraphData.Nodes) != 2 {
		t.Errorf("got %d nodes, want 2", len(resp.GraphData.Nodes))
	}
}

func TestLayoutGraphHandler(t *testing.T) {
	t.Parallel()

	body := `{
		"graphData": {
			"nodes": [
				{"id": "1", "label": "Person", "name": "Satya Nadella"},
				{"id": "2", "label": "Organization", "name": "Microsoft"}
			],
			"links": [
				{"id": "r1", "source": "1", "target": "2", "type": "CEO_OF"}
			]
		},
		"width": 400,
		"height": 300
	}`

	c, rec := newTestContext(t, http.MethodPost, "/api/graph/layout", body, &middleware.App{}, nil)

	if err := LayoutGraphHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Positions []struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"positions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(resp.Positions))
	}
	if resp.Positions[0] == resp.Positions[1] {
		t.Error("linked nodes settled on the same position")
	}
}

func TestRenderGraphHandler(t *testing.T) {
	t.Parallel()

	app := newMemoryApp(t)
	ctx := context.Background()
	if _, err := app.GraphStore().CreateNode(ctx, "Concept", map[string]any{"name": "Azure"}, 1); err != nil {
		t.Fatal(err)
	}

	user := &middleware.AppUser{UserID: 1}
	c, rec := newTestContext(t, http.MethodGet, "/api/graph/render?width=500&height=400", "", app, user)

	if err := RenderGraphHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}

	svg := rec.Body.String()
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "Azure") {
		t.Errorf("unexpected SVG output: %s", svg)
	}
}

func TestSetDBConfigHandler(t *testing.T) {
	t.Parallel()

	app := &middleware.App{}
	app.RegisterStore("neo4j", memory.NewStore())
	app.RegisterStore("memory", memory.NewStore())

	user := &middleware.AppUser{UserID: 1}
	c, rec := newTestContext(t, http.MethodPost, "/api/db-config", `{"backend": "memory"}`, app, user)

	if err := SetDBConfigHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if app.Backend() != "memory" {
		t.Errorf("backend = %q, want memory", app.Backend())
	}
}

func TestSetDBConfigHandlerRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	app := newMemoryApp(t)
	user := &middleware.AppUser{UserID: 1}

	// passes validation but was never registered
	c, rec := newTestContext(t, http.MethodPost, "/api/db-config", `{"backend": "neo4j"}`, app, user)

	if err := SetDBConfigHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if app.Backend() != "memory" {
		t.Errorf("backend = %q, want memory", app.Backend())
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	app := newMemoryApp(t)
	user := &middleware.AppUser{UserID: 1}

	body := &strings.Builder{}
	body.WriteString("--boundary\r\n")
	body.WriteString(`Content-Disposition: form-data; name="file"; filename="malware.exe"` + "\r\n")
	body.WriteString("Content-Type: application/octet-stream\r\n\r\n")
	body.WriteString("MZ\r\n")
	body.WriteString("--boundary--\r\n")

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(body.String()))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary=boundary")
	rec := httptest.NewRecorder()
	c := &middleware.AppContext{Context: e.NewContext(req, rec), App: app, User: user}

	if err := UploadFileHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
