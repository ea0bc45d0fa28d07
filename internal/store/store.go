// Package store provides the persistent workspace store backing the
// mnemo engines: typed nodes, weighted edges, decaying experiences, and
// the keyword route cache, all in a single SQLite database with FTS5
// full-text search.
package store

import (
	"context"

	"github.com/mnemohq/mnemo/internal/model"
)

// NodeQuery filters and pages a node lookup. A non-empty Text switches
// the query to full-text matching, intersected with the remaining
// filters. Soft-deleted nodes never match.
type NodeQuery struct {
	Text      string
	Namespace string
	Type      string
	Tags      []string
	Limit     int
	Offset    int
}

// EdgeFilter selects edges by endpoint and type. Zero-valued fields
// match everything.
type EdgeFilter struct {
	SourceID string
	TargetID string
	Type     string
	Limit    int
}

// ExperienceQuery filters and pages an experience lookup. Relevance
// filtering happens in the experience engine, not here: the store only
// knows the stored decay parameters.
type ExperienceQuery struct {
	Text   string
	Type   model.ExperienceType
	Limit  int
	Offset int
}

// NodeUpdate names the mutable node fields. Nil pointers leave a field
// unchanged.
type NodeUpdate struct {
	Name        *string
	Description *string
	Tags        *[]string
	Properties  *map[string]any
}

// Stats summarizes a workspace's contents.
type Stats struct {
	Nodes        int            `json:"nodes"`
	Edges        int            `json:"edges"`
	Experiences  int            `json:"experiences"`
	Routes       int            `json:"routes"`
	PerNamespace map[string]int `json:"per_namespace"`
}

// Snapshot is a full copy of a workspace's records, used by backup
// export/import. Soft-deleted nodes are included so a restore preserves
// their restorability.
type Snapshot struct {
	Nodes       []model.Node       `json:"nodes"`
	Edges       []model.Edge       `json:"edges"`
	Experiences []model.Experience `json:"experiences"`
	Routes      []model.Route      `json:"routes"`
}

// Store is the contract the engines require from the persistent store.
// Implementations must serialize mutations per workspace and keep every
// write transactional: a cancelled or failed call leaves no partial
// record behind.
type Store interface {
	InsertNode(ctx context.Context, n model.Node) error
	GetNode(ctx context.Context, id string) (*model.Node, error)
	UpdateNode(ctx context.Context, id string, u NodeUpdate) (*model.Node, error)
	SoftDeleteNode(ctx context.Context, id string) error
	RestoreNode(ctx context.Context, id string) error
	QueryNodes(ctx context.Context, q NodeQuery) ([]model.Node, error)

	UpsertEdge(ctx context.Context, e model.Edge) error
	DeleteEdge(ctx context.Context, sourceID, targetID, edgeType string) error
	GetEdges(ctx context.Context, f EdgeFilter) ([]model.Edge, error)

	InsertExperience(ctx context.Context, e model.Experience) error
	GetExperience(ctx context.Context, id string) (*model.Experience, error)
	// TouchExperience atomically increments the access count and
	// refreshes the last-accessed timestamp, returning the updated row.
	TouchExperience(ctx context.Context, id string) (*model.Experience, error)
	QueryExperiences(ctx context.Context, q ExperienceQuery) ([]model.Experience, error)
	DeleteExperience(ctx context.Context, id string) error
	// PromoteExperience writes the promoted node and stamps the
	// experience's promoted_to_node_id in one transaction. It fails with
	// a conflict if the experience was already promoted, leaving state
	// untouched either way.
	PromoteExperience(ctx context.Context, expID string, n model.Node) error

	GetRoutes(ctx context.Context, keywords []string) ([]model.Route, error)
	UpsertRoute(ctx context.Context, r model.Route) error
	DeleteRoutes(ctx context.Context) error

	Stats(ctx context.Context) (Stats, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	RestoreSnapshot(ctx context.Context, s *Snapshot) error
	Close() error
}
