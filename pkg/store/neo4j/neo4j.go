// Package neo4j provides the Neo4j-backed GraphStore used in persistent
// deployments.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/store"
)

// Label and relationship type names are interpolated into Cypher, so they
// are restricted to identifier characters. Anything else falls back to the
// generic names.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func safeLabel(label string) string {
	if identifierRe.MatchString(label) {
		return label
	}
	return "Entity"
}

func safeRelType(relType string) string {
	if identifierRe.MatchString(relType) {
		return relType
	}
	return "RELATED_TO"
}

// Store is a GraphStore over a Neo4j bolt connection.
type Store struct {
	driver neo4j.DriverWithContext
}

// NewStoreParams contains connection settings for the Neo4j store.
type NewStoreParams struct {
	URI      string
	User     string
	Password string
}

// NewStore connects to Neo4j and returns the store. The connection is
// verified lazily; use Verify for an explicit health check.
func NewStore(params NewStoreParams) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.User, params.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &Store{driver: driver}, nil
}

func (s *Store) CreateNode(ctx context.Context, label string, properties map[string]any, ownerID int64) (graph.NodeRecord, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(
			"CREATE (n:%s $properties) SET n.user_id = $user_id "+
				"RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props",
			safeLabel(label),
		)
		res, err := tx.Run(ctx, query, map[string]any{
			"properties": properties,
			"user_id":    ownerID,
		})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return nodeFromRecord(record)
	})
	if err != nil {
		return graph.NodeRecord{}, fmt.Errorf("failed to create node: %w", err)
	}
	return result.(graph.NodeRecord), nil
}

func (s *Store) CreateRelationship(ctx context.Context, startID, endID, relType string, properties map[string]any, ownerID int64) (graph.RelationshipRecord, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(
			"MATCH (a), (b) WHERE elementId(a) = $start_id AND elementId(b) = $end_id "+
				"CREATE (a)-[r:%s $properties]->(b) SET r.user_id = $user_id "+
				"RETURN elementId(r) AS id, type(r) AS type, properties(r) AS props, "+
				"elementId(a) AS start_id, elementId(b) AS end_id",
			safeRelType(relType),
		)
		res, err := tx.Run(ctx, query, map[string]any{
			"start_id":   startID,
			"end_id":     endID,
			"properties": properties,
			"user_id":    ownerID,
		})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, store.ErrEndpointNotFound
		}
		return relationshipFromRecord(records[0])
	})
	if err != nil {
		if errors.Is(err, store.ErrEndpointNotFound) {
			return graph.RelationshipRecord{}, err
		}
		return graph.RelationshipRecord{}, fmt.Errorf("failed to create relationship: %w", err)
	}
	return result.(graph.RelationshipRecord), nil
}

func (s *Store) NodesByOwner(ctx context.Context, ownerID int64) ([]graph.NodeRecord, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (n) WHERE n.user_id = $user_id "+
				"RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props",
			map[string]any{"user_id": ownerID},
		)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		nodes := make([]graph.NodeRecord, 0, len(records))
		for _, record := range records {
			node, err := nodeFromRecord(record)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return result.([]graph.NodeRecord), nil
}

func (s *Store) RelationshipsByOwner(ctx context.Context, ownerID int64) ([]graph.RelationshipRecord, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (a)-[r]->(b) WHERE r.user_id = $user_id "+
				"RETURN elementId(r) AS id, type(r) AS type, properties(r) AS props, "+
				"elementId(a) AS start_id, elementId(b) AS end_id",
			map[string]any{"user_id": ownerID},
		)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rels := make([]graph.RelationshipRecord, 0, len(records))
		for _, record := range records {
			rel, err := relationshipFromRecord(record)
			if err != nil {
				return nil, err
			}
			rels = append(rels, rel)
		}
		return rels, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return result.([]graph.RelationshipRecord), nil
}

func (s *Store) SearchSubgraph(ctx context.Context, ownerID int64, term string, limit int) (graph.GraphData, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit <= 0 {
		limit = 20
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (n) WHERE n.user_id = $user_id "+
				"AND ($term = '' OR toLower(n.name) CONTAINS toLower($term)) "+
				"WITH n LIMIT $limit "+
				"OPTIONAL MATCH (n)-[r]->(m) WHERE m.user_id = $user_id "+
				"AND ($term = '' OR toLower(m.name) CONTAINS toLower($term)) "+
				"RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props, "+
				"elementId(r) AS rel_id, type(r) AS rel_type, properties(r) AS rel_props, "+
				"elementId(m) AS end_id",
			map[string]any{"user_id": ownerID, "term": term, "limit": limit},
		)
		if err != nil {
			return nil, err
		}

		nodes := make([]graph.NodeRecord, 0)
		rels := make([]graph.RelationshipRecord, 0)
		seen := make(map[string]struct{})

		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			node, err := nodeFromRecord(record)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[node.ID]; !ok {
				seen[node.ID] = struct{}{}
				nodes = append(nodes, node)
			}

			relID, _ := record.Get("rel_id")
			if relID == nil {
				continue
			}
			relType, _ := record.Get("rel_type")
			relProps, _ := record.Get("rel_props")
			endID, _ := record.Get("end_id")
			props, _ := relProps.(map[string]any)
			rels = append(rels, graph.RelationshipRecord{
				ID:         fmt.Sprint(relID),
				Type:       fmt.Sprint(relType),
				StartID:    node.ID,
				EndID:      fmt.Sprint(endID),
				Properties: props,
			})
		}
		return graph.FromRecords(nodes, rels), nil
	})
	if err != nil {
		return graph.Empty(), fmt.Errorf("failed to search subgraph: %w", err)
	}

	// the OPTIONAL MATCH can return edges to nodes outside the limit
	g := result.(graph.GraphData)
	g.Links = g.ValidLinks()
	return g, nil
}

func (s *Store) DeleteOwner(ctx context.Context, ownerID int64) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MATCH (n) WHERE n.user_id = $user_id DETACH DELETE n",
			map[string]any{"user_id": ownerID},
		)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to delete graph data: %w", err)
	}
	return nil
}

func (s *Store) Verify(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func nodeFromRecord(record *neo4j.Record) (graph.NodeRecord, error) {
	id, ok := record.Get("id")
	if !ok {
		return graph.NodeRecord{}, fmt.Errorf("node record missing id")
	}
	rawLabels, _ := record.Get("labels")
	rawProps, _ := record.Get("props")

	labels := make([]string, 0)
	if ls, ok := rawLabels.([]any); ok {
		for _, l := range ls {
			labels = append(labels, fmt.Sprint(l))
		}
	}
	props, _ := rawProps.(map[string]any)

	return graph.NodeRecord{
		ID:         fmt.Sprint(id),
		Labels:     labels,
		Properties: props,
	}, nil
}

func relationshipFromRecord(record *neo4j.Record) (graph.RelationshipRecord, error) {
	id, ok := record.Get("id")
	if !ok {
		return graph.RelationshipRecord{}, fmt.Errorf("relationship record missing id")
	}
	relType, _ := record.Get("type")
	rawProps, _ := record.Get("props")
	startID, _ := record.Get("start_id")
	endID, _ := record.Get("end_id")
	props, _ := rawProps.(map[string]any)

	return graph.RelationshipRecord{
		ID:         fmt.Sprint(id),
		Type:       fmt.Sprint(relType),
		StartID:    fmt.Sprint(startID),
		EndID:      fmt.Sprint(endID),
		Properties: props,
	}, nil
}
