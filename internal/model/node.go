// Package model defines the record types shared by the mnemo engines:
// graph nodes and edges, decaying experiences, and router entries.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultNamespace is where nodes are filed when the caller does not name
// a namespace.
const DefaultNamespace = "knowledge"

// Node is a permanent knowledge unit in the graph. A soft-deleted node
// (DeletedAt set) is excluded from queries and traversals, but its ID
// stays valid so edges referencing it survive a later restore.
type Node struct {
	ID          string         `json:"id"`
	Namespace   string         `json:"namespace"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// Deleted reports whether the node is soft-deleted.
func (n Node) Deleted() bool { return n.DeletedAt != nil }

// NodeSummary is the progressive-disclosure stub for a node: the smallest
// payload a caller can use to decide whether to ask for full detail.
type NodeSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Summary returns the node's disclosure stub.
func (n Node) Summary() NodeSummary {
	return NodeSummary{ID: n.ID, Name: n.Name, Type: n.Type}
}

// NewID returns a short random identifier. Eight hex characters of a v4
// UUID keep ids log-friendly while collisions stay negligible at
// workspace scale.
func NewID() string {
	return uuid.NewString()[:8]
}
