package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
	"github.com/synapse-kb/synapse/backend/pkg/store/memory"
)

const sampleText = "Satya Nadella is the CEO of Microsoft. Microsoft develops Azure."

type stubClient struct {
	result    ai.ExtractionResult
	err       error
	calls     int
	imageText string
}

func (s *stubClient) Extract(_ context.Context, _ string, _ ...ai.GenerateOption) (ai.ExtractionResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubClient) Answer(_ context.Context, _ string, _ string, _ ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubClient) Embedding(_ context.Context, _ []byte) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (s *stubClient) DescribeImage(_ context.Context, _ string, _ loader.GraphBase64) (string, error) {
	if s.imageText == "" {
		return "", errors.New("not implemented")
	}
	return s.imageText, nil
}

func (s *stubClient) ResetMetrics()               {}
func (s *stubClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func singleUnitChunker(text string, fileID string) ([]loader.Unit, error) {
	if text == "" {
		return nil, nil
	}
	return []loader.Unit{{ID: "u1", FileID: fileID, Index: 0, Text: text}}, nil
}

func newTestPipeline(client ai.GraphAIClient, s *memory.Store) *Pipeline {
	p := NewPipeline(NewPipelineParams{Client: client, Store: s})
	p.ChunkFunc = singleUnitChunker
	return p
}

func TestProcessTextHeuristicFallbackWithoutClient(t *testing.T) {
	s := memory.NewStore()
	p := newTestPipeline(nil, s)

	result, err := p.ProcessText(context.Background(), "notes.txt", "txt", sampleText, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// document + chunk + three entities
	if result.NodesCreated != 5 {
		t.Errorf("expected 5 nodes, got %d", result.NodesCreated)
	}
	names := strings.Join(result.EntityNames, ",")
	for _, want := range []string{"Satya Nadella", "Microsoft", "Azure"} {
		if !strings.Contains(names, want) {
			t.Errorf("expected entity %q in %v", want, result.EntityNames)
		}
	}
}

func TestProcessTextModelResults(t *testing.T) {
	s := memory.NewStore()
	client := &stubClient{result: ai.ExtractionResult{
		Entities: []ai.ExtractedEntity{
			{Name: "Satya Nadella", Type: "Person"},
			{Name: "Microsoft", Type: "Organization"},
		},
		Relationships: []ai.ExtractedRelationship{
			{Source: "Satya Nadella", Target: "Microsoft", Type: "CEO_OF"},
		},
	}}
	p := newTestPipeline(client, s)

	result, err := p.ProcessText(context.Background(), "notes.txt", "txt", sampleText, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("expected one extraction call, got %d", client.calls)
	}

	// doc, chunk, two entities
	if result.NodesCreated != 4 {
		t.Errorf("expected 4 nodes, got %d", result.NodesCreated)
	}
	// two MENTIONS + one CEO_OF + one HAS_CHUNK
	if result.RelationshipsCreated != 4 {
		t.Errorf("expected 4 relationships, got %d", result.RelationshipsCreated)
	}

	rels, err := s.RelationshipsByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, r := range rels {
		if r.Type == "CEO_OF" {
			found = true
		}
	}
	if !found {
		t.Error("expected CEO_OF relationship to be stored")
	}
}

func TestProcessTextFallsBackOnModelError(t *testing.T) {
	s := memory.NewStore()
	client := &stubClient{err: errors.New("model unavailable")}
	p := newTestPipeline(client, s)

	result, err := p.ProcessText(context.Background(), "notes.txt", "txt", sampleText, 1)
	if err != nil {
		t.Fatalf("ingestion must not fail when the model is down: %v", err)
	}
	if len(result.EntityNames) == 0 {
		t.Error("expected heuristic entities after model failure")
	}
	if client.calls < 2 {
		t.Errorf("expected the model call to be retried, got %d calls", client.calls)
	}
}

func TestProcessTextSkipsRelationshipsWithUnknownEndpoints(t *testing.T) {
	s := memory.NewStore()
	client := &stubClient{result: ai.ExtractionResult{
		Entities: []ai.ExtractedEntity{{Name: "Microsoft", Type: "Organization"}},
		Relationships: []ai.ExtractedRelationship{
			{Source: "Microsoft", Target: "Ghost Corp", Type: "OWNS"},
		},
	}}
	p := newTestPipeline(client, s)

	result, err := p.ProcessText(context.Background(), "notes.txt", "txt", sampleText, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rels, err := s.RelationshipsByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range rels {
		if r.Type == "OWNS" {
			t.Error("relationship with unknown endpoint should be skipped")
		}
	}
	// one MENTIONS + one HAS_CHUNK
	if result.RelationshipsCreated != 2 {
		t.Errorf("expected 2 relationships, got %d", result.RelationshipsCreated)
	}
}

func TestProcessTextMergesDuplicateEntitiesAcrossUnits(t *testing.T) {
	s := memory.NewStore()
	p := NewPipeline(NewPipelineParams{Store: s})
	p.ChunkFunc = func(text string, fileID string) ([]loader.Unit, error) {
		half := len(text) / 2
		return []loader.Unit{
			{ID: "u1", FileID: fileID, Index: 0, Text: text[:half] + " Microsoft."},
			{ID: "u2", FileID: fileID, Index: 1, Text: "Microsoft. " + text[half:]},
		}, nil
	}

	_, err := p.ProcessText(context.Background(), "notes.txt", "txt", sampleText, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodes, err := s.NodesByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, n := range nodes {
		if name, _ := n.Properties["name"].(string); name == "Microsoft" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected Microsoft stored once, got %d", count)
	}
}

func TestOverviewGraph(t *testing.T) {
	s := memory.NewStore()
	p := newTestPipeline(nil, s)

	if _, err := p.ProcessText(context.Background(), "notes.txt", "txt", sampleText, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := OverviewGraph(context.Background(), s, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) == 0 || len(g.Links) == 0 {
		t.Errorf("expected populated overview, got %d nodes %d links", len(g.Nodes), len(g.Links))
	}

	other, err := OverviewGraph(context.Background(), s, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other.Nodes) != 0 {
		t.Error("other owners must not see the graph")
	}
}

func TestProcessFileDescribesImage(t *testing.T) {
	s := memory.NewStore()
	client := &stubClient{
		imageText: "A whiteboard photo: Satya Nadella leads Microsoft.",
		result: ai.ExtractionResult{
			Entities: []ai.ExtractedEntity{
				{Name: "Satya Nadella", Type: "Person"},
				{Name: "Microsoft", Type: "Organization"},
			},
			Relationships: []ai.ExtractedRelationship{
				{Source: "Satya Nadella", Target: "Microsoft", Type: "CEO_OF"},
			},
		},
	}
	p := newTestPipeline(client, s)

	base := &loader.BytesGraphFileLoader{Data: []byte{0x89, 'P', 'N', 'G'}}
	result, err := p.ProcessFile(context.Background(), base, loader.GraphFile{
		ID:       "1",
		FileName: "whiteboard.png",
		FilePath: "whiteboard.png",
	}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// doc, chunk, two entities out of the vision description
	if result.NodesCreated != 4 {
		t.Errorf("expected 4 nodes, got %d", result.NodesCreated)
	}
	if client.calls != 1 {
		t.Errorf("expected one extraction call, got %d", client.calls)
	}
}

func TestProcessFileImageWithoutModel(t *testing.T) {
	s := memory.NewStore()
	p := newTestPipeline(nil, s)

	base := &loader.BytesGraphFileLoader{Data: []byte{0x89, 'P', 'N', 'G'}}
	result, err := p.ProcessFile(context.Background(), base, loader.GraphFile{
		ID:       "1",
		FileName: "whiteboard.png",
		FilePath: "whiteboard.png",
	}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// no vision model configured, only the document node survives
	if result.NodesCreated != 1 {
		t.Errorf("expected 1 node, got %d", result.NodesCreated)
	}
	if len(result.EntityNames) != 0 {
		t.Errorf("expected no entities, got %v", result.EntityNames)
	}
}
