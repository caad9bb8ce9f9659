// Package memory provides a map-backed GraphStore. It is the default
// backend when no Neo4j instance is configured and the swap target of the
// db-config endpoint.
package memory

import (
	"context"
	"strings"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/store"
)

type nodeEntry struct {
	record  graph.NodeRecord
	ownerID int64
}

type relEntry struct {
	record  graph.RelationshipRecord
	ownerID int64
}

// Store is an in-memory GraphStore. All operations are safe for concurrent
// use; insertion order is preserved for deterministic reads.
type Store struct {
	mu        sync.RWMutex
	nodes     map[string]*nodeEntry
	nodeOrder []string
	rels      map[string]*relEntry
	relOrder  []string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*nodeEntry),
		rels:  make(map[string]*relEntry),
	}
}

func (s *Store) CreateNode(ctx context.Context, label string, properties map[string]any, ownerID int64) (graph.NodeRecord, error) {
	id, err := gonanoid.New()
	if err != nil {
		return graph.NodeRecord{}, err
	}

	props := make(map[string]any, len(properties)+1)
	for k, v := range properties {
		props[k] = v
	}
	props["user_id"] = ownerID

	record := graph.NodeRecord{
		ID:         id,
		Labels:     []string{label},
		Properties: props,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[id] = &nodeEntry{record: record, ownerID: ownerID}
	s.nodeOrder = append(s.nodeOrder, id)
	return record, nil
}

func (s *Store) CreateRelationship(ctx context.Context, startID, endID, relType string, properties map[string]any, ownerID int64) (graph.RelationshipRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[startID]; !ok {
		return graph.RelationshipRecord{}, store.ErrEndpointNotFound
	}
	if _, ok := s.nodes[endID]; !ok {
		return graph.RelationshipRecord{}, store.ErrEndpointNotFound
	}

	id, err := gonanoid.New()
	if err != nil {
		return graph.RelationshipRecord{}, err
	}

	props := make(map[string]any, len(properties)+1)
	for k, v := range properties {
		props[k] = v
	}
	props["user_id"] = ownerID

	record := graph.RelationshipRecord{
		ID:         id,
		Type:       relType,
		StartID:    startID,
		EndID:      endID,
		Properties: props,
	}
	s.rels[id] = &relEntry{record: record, ownerID: ownerID}
	s.relOrder = append(s.relOrder, id)
	return record, nil
}

func (s *Store) NodesByOwner(ctx context.Context, ownerID int64) ([]graph.NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]graph.NodeRecord, 0)
	for _, id := range s.nodeOrder {
		if e, ok := s.nodes[id]; ok && e.ownerID == ownerID {
			out = append(out, e.record)
		}
	}
	return out, nil
}

func (s *Store) RelationshipsByOwner(ctx context.Context, ownerID int64) ([]graph.RelationshipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]graph.RelationshipRecord, 0)
	for _, id := range s.relOrder {
		if e, ok := s.rels[id]; ok && e.ownerID == ownerID {
			out = append(out, e.record)
		}
	}
	return out, nil
}

func (s *Store) SearchSubgraph(ctx context.Context, ownerID int64, term string, limit int) (graph.GraphData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))

	matched := make([]graph.NodeRecord, 0)
	matchedIDs := make(map[string]struct{})
	for _, id := range s.nodeOrder {
		e, ok := s.nodes[id]
		if !ok || e.ownerID != ownerID {
			continue
		}
		name := strings.ToLower(graph.Properties(e.record.Properties).Name())
		if term != "" && !strings.Contains(name, term) {
			continue
		}
		matched = append(matched, e.record)
		matchedIDs[id] = struct{}{}
		if limit > 0 && len(matched) >= limit {
			break
		}
	}

	rels := make([]graph.RelationshipRecord, 0)
	for _, id := range s.relOrder {
		e, ok := s.rels[id]
		if !ok || e.ownerID != ownerID {
			continue
		}
		if _, ok := matchedIDs[e.record.StartID]; !ok {
			continue
		}
		if _, ok := matchedIDs[e.record.EndID]; !ok {
			continue
		}
		rels = append(rels, e.record)
	}

	return graph.FromRecords(matched, rels), nil
}

func (s *Store) DeleteOwner(ctx context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keepNodes := s.nodeOrder[:0]
	for _, id := range s.nodeOrder {
		if e, ok := s.nodes[id]; ok && e.ownerID == ownerID {
			delete(s.nodes, id)
			continue
		}
		keepNodes = append(keepNodes, id)
	}
	s.nodeOrder = keepNodes

	keepRels := s.relOrder[:0]
	for _, id := range s.relOrder {
		if e, ok := s.rels[id]; ok && e.ownerID == ownerID {
			delete(s.rels, id)
			continue
		}
		keepRels = append(keepRels, id)
	}
	s.relOrder = keepRels
	return nil
}

func (s *Store) Verify(ctx context.Context) error {
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}
