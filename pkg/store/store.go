// Package store defines the storage contract for knowledge graphs. Two
// implementations exist: a Neo4j-backed store for persistent deployments and
// an in-memory store for tests and single-process setups. The active backend
// can be swapped at runtime through the db-config endpoint.
package store

import (
	"context"
	"errors"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
)

// ErrEndpointNotFound is returned by CreateRelationship when the start or
// end node id does not exist. Callers skip the relationship and continue.
var ErrEndpointNotFound = errors.New("store: relationship endpoint not found")

// GraphStore persists and queries per-user knowledge graphs. Every record
// is owned by the user that created it; reads are always scoped to an owner.
type GraphStore interface {
	// CreateNode stores a node with the given category label and
	// properties and returns the stored record with its assigned id.
	CreateNode(ctx context.Context, label string, properties map[string]any, ownerID int64) (graph.NodeRecord, error)

	// CreateRelationship links two existing nodes. It returns
	// ErrEndpointNotFound when either endpoint id is unknown.
	CreateRelationship(ctx context.Context, startID, endID, relType string, properties map[string]any, ownerID int64) (graph.RelationshipRecord, error)

	// NodesByOwner returns all nodes owned by the user.
	NodesByOwner(ctx context.Context, ownerID int64) ([]graph.NodeRecord, error)

	// RelationshipsByOwner returns all relationships owned by the user.
	RelationshipsByOwner(ctx context.Context, ownerID int64) ([]graph.RelationshipRecord, error)

	// SearchSubgraph returns the nodes whose name matches the term
	// (case-insensitive substring) plus the relationships among them,
	// capped at limit nodes. An empty term returns the whole graph up
	// to the cap.
	SearchSubgraph(ctx context.Context, ownerID int64, term string, limit int) (graph.GraphData, error)

	// DeleteOwner removes every node and relationship the user owns.
	DeleteOwner(ctx context.Context, ownerID int64) error

	// Verify checks connectivity to the backing store.
	Verify(ctx context.Context) error

	Close(ctx context.Context) error
}
