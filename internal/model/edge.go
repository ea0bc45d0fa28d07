package model

import "time"

// Edge is a directed, typed, weighted relationship between two nodes.
// The (SourceID, TargetID, Type) triple is the edge's identity: a second
// connect on the same triple overwrites weight and properties.
type Edge struct {
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Type       string         `json:"type"`
	Weight     float64        `json:"weight"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// DefaultEdgeWeight is the relationship strength assigned when the caller
// does not specify one.
const DefaultEdgeWeight = 1.0
