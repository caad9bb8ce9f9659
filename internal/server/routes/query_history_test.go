package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/graph"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB answers the history queries from a scripted record list and
// records what the query handler writes.
type fakeDB struct {
	history    []db.Query
	historyErr error
	created    []db.CreateQueryParams
	createErr  error
}

func (f *fakeDB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return &historyRows{records: f.history}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "INSERT INTO queries") {
		if f.createErr != nil {
			return scriptedRow{err: f.createErr}
		}
		params := db.CreateQueryParams{
			UserID:        args[0].(int64),
			Text:          args[1].(string),
			Response:      args[2].(string),
			ResponseGraph: args[3].([]byte),
		}
		f.created = append(f.created, params)
		return scriptedRow{record: db.Query{
			ID:            int64(len(f.created)),
			UserID:        params.UserID,
			Text:          params.Text,
			Response:      params.Response,
			ResponseGraph: params.ResponseGraph,
			Timestamp:     time.Now(),
		}}
	}
	return scriptedRow{err: pgx.ErrNoRows}
}

type scriptedRow struct {
	record db.Query
	err    error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.record.ID
	*(dest[1].(*int64)) = r.record.UserID
	*(dest[2].(*string)) = r.record.Text
	*(dest[3].(*string)) = r.record.Response
	*(dest[4].(*[]byte)) = r.record.ResponseGraph
	*(dest[5].(*time.Time)) = r.record.Timestamp
	return nil
}

// historyRows serves db.Query records through the pgx.Rows interface.
type historyRows struct {
	records []db.Query
	pos     int
}

func (r *historyRows) Close()                                       {}
func (r *historyRows) Err() error                                   { return nil }
func (r *historyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *historyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *historyRows) Next() bool {
	r.pos++
	return r.pos <= len(r.records)
}

func (r *historyRows) Scan(dest ...any) error {
	return scriptedRow{record: r.records[r.pos-1]}.Scan(dest...)
}

func (r *historyRows) Values() ([]any, error) { return nil, nil }
func (r *historyRows) RawValues() [][]byte    { return nil }
func (r *historyRows) Conn() *pgx.Conn        { return nil }

func TestGetHistoryHandlerReturnsArray(t *testing.T) {
	graphJSON, err := json.Marshal(graph.GraphData{
		Nodes: []graph.Node{{ID: "1", Label: "Person", Name: "Ada"}},
		Links: []graph.Link{},
	})
	if err != nil {
		t.Fatal(err)
	}

	app := newMemoryApp(t)
	app.DBConn = &fakeDB{history: []db.Query{
		{ID: 2, UserID: 1, Text: "Ada who?", Response: "Ada Lovelace.", ResponseGraph: graphJSON, Timestamp: time.Now()},
		{ID: 1, UserID: 1, Text: "first question", Response: "first answer", Timestamp: time.Now().Add(-time.Hour)},
	}}

	c, rec := newTestContext(t, http.MethodGet, "/api/history", "", app, &middleware.AppUser{UserID: 1})
	if err := GetHistoryHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := strings.TrimSpace(rec.Body.String())
	if !strings.HasPrefix(body, "[") {
		t.Fatalf("history must be a bare array, got %q", body)
	}

	var entries []struct {
		ID        int64           `json:"id"`
		Query     string          `json:"query"`
		Response  string          `json:"response"`
		GraphData graph.GraphData `json:"graphData"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[0].Query != "Ada who?" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if len(entries[0].GraphData.Nodes) != 1 {
		t.Errorf("expected the stored subgraph, got %+v", entries[0].GraphData)
	}
	if len(entries[1].GraphData.Nodes) != 0 {
		t.Errorf("missing subgraph must come back empty, got %+v", entries[1].GraphData)
	}
}

func TestGetHistoryHandlerStoreError(t *testing.T) {
	app := newMemoryApp(t)
	app.DBConn = &fakeDB{historyErr: errors.New("connection lost")}

	c, rec := newTestContext(t, http.MethodGet, "/api/history", "", app, &middleware.AppUser{UserID: 1})
	if err := GetHistoryHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message == "" {
		t.Error("error responses must carry a message")
	}
}

func TestQueryGraphHandlerAnswersAndRecords(t *testing.T) {
	app := newMemoryApp(t)
	fake := &fakeDB{}
	app.DBConn = fake

	ctx := context.Background()
	s := app.GraphStore()
	person, err := s.CreateNode(ctx, "Person", map[string]any{"name": "Grace Hopper"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	var targets []string
	for _, name := range []string{"Navy", "UNIVAC", "COBOL"} {
		n, err := s.CreateNode(ctx, "Organization", map[string]any{"name": name}, 1)
		if err != nil {
			t.Fatal(err)
		}
		targets = append(targets, n.ID)
	}
	for _, target := range targets {
		if _, err := s.CreateRelationship(ctx, person.ID, target, "WORKED_ON", nil, 1); err != nil {
			t.Fatal(err)
		}
	}

	c, rec := newTestContext(t, http.MethodPost, "/api/query",
		"{\"query\":\"who worked on what?\\u0000\"}", app, &middleware.AppUser{UserID: 1})
	if err := QueryGraphHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		ID        int64           `json:"id"`
		Query     string          `json:"query"`
		Response  string          `json:"response"`
		GraphData graph.GraphData `json:"graphData"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != 1 {
		t.Errorf("expected the recorded id, got %d", resp.ID)
	}
	if !strings.Contains(resp.Response, "I found") {
		t.Errorf("expected a graph summary answer, got %q", resp.Response)
	}
	if len(resp.GraphData.Nodes) != 4 || len(resp.GraphData.Links) != 3 {
		t.Errorf("expected the full subgraph, got %+v", resp.GraphData)
	}

	if len(fake.created) != 1 {
		t.Fatalf("expected one recorded query, got %d", len(fake.created))
	}
	if fake.created[0].Text != "who worked on what?" {
		t.Errorf("recorded text must be sanitized, got %q", fake.created[0].Text)
	}
	if strings.ContainsRune(fake.created[0].Response, 0) {
		t.Errorf("recorded response must not contain NUL bytes, got %q", fake.created[0].Response)
	}
}

func TestQueryGraphHandlerRecordFailure(t *testing.T) {
	app := newMemoryApp(t)
	app.DBConn = &fakeDB{createErr: errors.New("connection lost")}

	c, rec := newTestContext(t, http.MethodPost, "/api/query",
		`{"query":"Grace who?"}`, app, &middleware.AppUser{UserID: 1})
	if err := QueryGraphHandler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
