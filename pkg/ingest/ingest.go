// Package ingest orchestrates the document-to-graph pipeline: chunk the
// text, extract entities and relationships per unit, and persist the
// resulting nodes and links under the owning user.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/synapse-kb/synapse/backend/internal/util"
	"github.com/synapse-kb/synapse/backend/pkg/ai"
	"github.com/synapse-kb/synapse/backend/pkg/extract"
	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
	"github.com/synapse-kb/synapse/backend/pkg/logger"
	"github.com/synapse-kb/synapse/backend/pkg/store"
)

const contentPreviewLength = 1000

// Pipeline runs document ingestion. Client may be nil, in which case the
// heuristic extractor handles every unit.
type Pipeline struct {
	Client ai.GraphAIClient
	Store  store.GraphStore

	Encoder     string
	UnitTokens  int
	UnitOverlap int
	ParallelMax int
	MaxRetries  int

	// ChunkFunc overrides the token-based chunker. Used by tests and by
	// callers that already have pre-split units.
	ChunkFunc func(text string, fileID string) ([]loader.Unit, error)
}

// NewPipelineParams bundles the dependencies and tuning knobs for a Pipeline.
type NewPipelineParams struct {
	Client ai.GraphAIClient
	Store  store.GraphStore

	Encoder     string
	UnitTokens  int
	UnitOverlap int
	ParallelMax int
	MaxRetries  int
}

// NewPipeline creates a Pipeline with defaults applied.
func NewPipeline(params NewPipelineParams) *Pipeline {
	p := &Pipeline{
		Client:      params.Client,
		Store:       params.Store,
		Encoder:     params.Encoder,
		UnitTokens:  params.UnitTokens,
		UnitOverlap: params.UnitOverlap,
		ParallelMax: params.ParallelMax,
		MaxRetries:  params.MaxRetries,
	}
	if p.Encoder == "" {
		p.Encoder = loader.DefaultEncoder
	}
	if p.UnitTokens <= 0 {
		p.UnitTokens = loader.DefaultUnitTokens
	}
	if p.UnitOverlap < 0 {
		p.UnitOverlap = loader.DefaultUnitOverlap
	}
	if p.ParallelMax <= 0 {
		p.ParallelMax = 4
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = 2
	}
	return p
}

// Result reports what a processed document produced.
type Result struct {
	DocumentNodeID       string
	NodesCreated         int
	RelationshipsCreated int
	EntityNames          []string
	Units                []loader.Unit
}

// ProcessText ingests a document's text for the given owner. Entities and
// relationships are extracted per unit, merged by entity name, and stored
// with the document and chunk nodes the way the query side expects them.
func (p *Pipeline) ProcessText(
	ctx context.Context,
	fileName string,
	fileType string,
	text string,
	ownerID int64,
) (*Result, error) {
	text = strings.TrimSpace(text)

	chunk := p.ChunkFunc
	if chunk == nil {
		chunk = func(text string, fileID string) ([]loader.Unit, error) {
			return loader.ChunkText(text, fileID, p.Encoder, p.UnitTokens, p.UnitOverlap)
		}
	}

	units, err := chunk(text, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk text: %w", err)
	}

	extraction, err := p.extractAll(ctx, units)
	if err != nil {
		return nil, err
	}

	return p.persist(ctx, fileName, fileType, text, units, extraction, ownerID)
}

// extractAll runs extraction over all units with bounded parallelism and
// merges the results by entity name.
func (p *Pipeline) extractAll(ctx context.Context, units []loader.Unit) (ai.ExtractionResult, error) {
	merged := ai.ExtractionResult{}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.ParallelMax)
	for _, unit := range units {
		u := unit
		g.Go(func() error {
			result := p.extractUnit(gCtx, u)

			mu.Lock()
			merged = mergeExtractions(merged, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ai.ExtractionResult{}, err
	}
	return merged, nil
}

// extractUnit tries the model first and falls back to the heuristic
// extractor. Ingestion never fails because a model is down.
func (p *Pipeline) extractUnit(ctx context.Context, unit loader.Unit) ai.ExtractionResult {
	if p.Client != nil {
		result, err := util.RetryWithContext(ctx, p.MaxRetries, func(ctx context.Context) (ai.ExtractionResult, error) {
			return p.Client.Extract(ctx, unit.Text)
		})
		if err == nil {
			return result
		}
		logger.Warn("Model extraction failed, falling back to heuristic extraction", "unit", unit.ID, "error", err)
	}
	return extract.Extract(unit.Text)
}

func (p *Pipeline) persist(
	ctx context.Context,
	fileName string,
	fileType string,
	text string,
	units []loader.Unit,
	extraction ai.ExtractionResult,
	ownerID int64,
) (*Result, error) {
	preview := text
	if len(preview) > contentPreviewLength {
		preview = preview[:contentPreviewLength]
	}

	docNode, err := p.Store.CreateNode(ctx, "Document", map[string]any{
		"name":     fileName,
		"content":  preview,
		"fileName": fileName,
		"fileType": fileType,
	}, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create document node: %w", err)
	}

	result := &Result{
		DocumentNodeID: docNode.ID,
		NodesCreated:   1,
		Units:          units,
	}

	// entity nodes plus a MENTIONS edge from the document
	entityIDs := make(map[string]string, len(extraction.Entities))
	for _, entity := range extraction.Entities {
		label := entity.Type
		if label == "" {
			label = "Entity"
		}
		props := map[string]any{
			"name":     entity.Name,
			"mentions": extract.MentionCount(text, entity.Name),
		}
		if entity.Description != "" {
			props["description"] = entity.Description
		}

		node, err := p.Store.CreateNode(ctx, label, props, ownerID)
		if err != nil {
			logger.Warn("Failed to create entity node", "entity", entity.Name, "error", err)
			continue
		}
		entityIDs[entity.Name] = node.ID
		result.NodesCreated++
		result.EntityNames = append(result.EntityNames, entity.Name)

		if _, err := p.Store.CreateRelationship(ctx, docNode.ID, node.ID, "MENTIONS", map[string]any{
			"count": props["mentions"],
		}, ownerID); err == nil {
			result.RelationshipsCreated++
		}
	}

	// relationships between entities; pairs with missing endpoints are
	// skipped rather than failing the upload
	for _, rel := range extraction.Relationships {
		startID, okStart := entityIDs[rel.Source]
		endID, okEnd := entityIDs[rel.Target]
		if !okStart || !okEnd {
			continue
		}

		props := map[string]any{}
		if rel.Evidence != "" {
			props["sentence"] = rel.Evidence
		}
		relType := rel.Type
		if relType == "" {
			relType = "RELATED_TO"
		}

		if _, err := p.Store.CreateRelationship(ctx, startID, endID, relType, props, ownerID); err != nil {
			if errors.Is(err, store.ErrEndpointNotFound) {
				continue
			}
			logger.Warn("Failed to create relationship", "source", rel.Source, "target", rel.Target, "error", err)
			continue
		}
		result.RelationshipsCreated++
	}

	// chunk nodes preserve the unit texts for inspection
	for _, unit := range units {
		chunkNode, err := p.Store.CreateNode(ctx, "Chunk", map[string]any{
			"name":    fmt.Sprintf("Chunk %d of %s", unit.Index+1, fileName),
			"content": unit.Text,
			"index":   unit.Index,
		}, ownerID)
		if err != nil {
			logger.Warn("Failed to create chunk node", "index", unit.Index, "error", err)
			continue
		}
		result.NodesCreated++

		if _, err := p.Store.CreateRelationship(ctx, docNode.ID, chunkNode.ID, "HAS_CHUNK", map[string]any{
			"index": unit.Index,
		}, ownerID); err == nil {
			result.RelationshipsCreated++
		}
	}

	return result, nil
}

// mergeExtractions combines two extraction results, deduplicating entities
// by name and relationships by endpoint pair and type.
func mergeExtractions(a, b ai.ExtractionResult) ai.ExtractionResult {
	seen := make(map[string]struct{}, len(a.Entities))
	for _, e := range a.Entities {
		seen[e.Name] = struct{}{}
	}
	for _, e := range b.Entities {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		a.Entities = append(a.Entities, e)
	}

	seenRels := make(map[string]struct{}, len(a.Relationships))
	for _, r := range a.Relationships {
		seenRels[relKey(r)] = struct{}{}
	}
	for _, r := range b.Relationships {
		if _, ok := seenRels[relKey(r)]; ok {
			continue
		}
		seenRels[relKey(r)] = struct{}{}
		a.Relationships = append(a.Relationships, r)
	}
	return a
}

func relKey(r ai.ExtractedRelationship) string {
	a, b := r.Source, r.Target
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b + "\x00" + r.Type
}

// OverviewGraph loads the owner's full graph in wire format.
func OverviewGraph(ctx context.Context, s store.GraphStore, ownerID int64) (graph.GraphData, error) {
	nodes, err := s.NodesByOwner(ctx, ownerID)
	if err != nil {
		return graph.Empty(), err
	}
	rels, err := s.RelationshipsByOwner(ctx, ownerID)
	if err != nil {
		return graph.Empty(), err
	}
	g := graph.FromRecords(nodes, rels)
	g.Links = g.ValidLinks()
	return g, nil
}
