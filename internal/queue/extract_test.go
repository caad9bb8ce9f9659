package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/ingest"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
	"github.com/synapse-kb/synapse/backend/pkg/store/memory"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// fakeConn answers the queries extraction issues and records what was
// written, keyed on SQL fragments.
type fakeConn struct {
	execSQL []string
	units   []db.CreateUnitParams
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeConn) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeConn) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "INSERT INTO units") {
		params := db.CreateUnitParams{
			ID:        args[0].(string),
			FileID:    args[1].(int64),
			Idx:       args[2].(int32),
			Content:   args[3].(string),
			Embedding: args[4].(pgvector.Vector),
		}
		f.units = append(f.units, params)
		return unitRow{params: params}
	}
	return errRow{err: pgx.ErrNoRows}
}

type unitRow struct {
	params db.CreateUnitParams
}

func (r unitRow) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.params.ID
	*(dest[1].(*int64)) = r.params.FileID
	*(dest[2].(*int32)) = r.params.Idx
	*(dest[3].(*string)) = r.params.Content
	*(dest[4].(*pgvector.Vector)) = r.params.Embedding
	*(dest[5].(*time.Time)) = time.Now()
	return nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error { return r.err }

type stubEmbedClient struct{}

func (stubEmbedClient) Extract(_ context.Context, _ string, _ ...ai.GenerateOption) (ai.ExtractionResult, error) {
	return ai.ExtractionResult{}, errors.New("not implemented")
}

func (stubEmbedClient) Answer(_ context.Context, _ string, _ string, _ ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (stubEmbedClient) Embedding(_ context.Context, _ []byte) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (stubEmbedClient) DescribeImage(_ context.Context, _ string, _ loader.GraphBase64) (string, error) {
	return "", errors.New("not implemented")
}

func (stubEmbedClient) ResetMetrics()               {}
func (stubEmbedClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestProcessExtractMessageLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	text := "Satya Nadella is the CEO of Microsoft."
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	s := memory.NewStore()
	pipeline := ingest.NewPipeline(ingest.NewPipelineParams{Store: s})
	pipeline.ChunkFunc = func(text string, fileID string) ([]loader.Unit, error) {
		return []loader.Unit{{ID: "u1", FileID: fileID, Index: 0, Text: text}}, nil
	}

	msg, err := json.Marshal(ExtractFileMsg{
		FileID:   7,
		UserID:   1,
		FileKey:  path,
		FileName: "notes.txt",
	})
	if err != nil {
		t.Fatal(err)
	}

	conn := &fakeConn{}
	if err := ProcessExtractMessage(context.Background(), nil, pipeline, conn, string(msg)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes, err := s.NodesByOwner(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) == 0 {
		t.Error("expected graph nodes from the stored file")
	}

	marked := false
	for _, sql := range conn.execSQL {
		if strings.Contains(sql, "SET processed = TRUE") {
			marked = true
		}
	}
	if !marked {
		t.Error("expected the file to be marked processed")
	}
}

func TestStoreUnitEmbeddingsSanitizesContent(t *testing.T) {
	conn := &fakeConn{}
	pipeline := ingest.NewPipeline(ingest.NewPipelineParams{
		Client: stubEmbedClient{},
		Store:  memory.NewStore(),
	})

	units := []loader.Unit{
		{ID: "u1", Index: 0, Text: "clean text"},
		{ID: "u2", Index: 1, Text: "page\x00break\xfftext"},
	}
	StoreUnitEmbeddings(context.Background(), db.New(conn), pipeline, 7, units)

	if len(conn.units) != 2 {
		t.Fatalf("expected 2 stored units, got %d", len(conn.units))
	}
	if conn.units[0].Content != "clean text" {
		t.Errorf("clean content must pass through, got %q", conn.units[0].Content)
	}
	if strings.ContainsRune(conn.units[1].Content, 0) {
		t.Errorf("stored content must not contain NUL bytes, got %q", conn.units[1].Content)
	}
	if !strings.Contains(conn.units[1].Content, "pagebreaktext") {
		t.Errorf("sanitizing should keep the surrounding text, got %q", conn.units[1].Content)
	}
}
