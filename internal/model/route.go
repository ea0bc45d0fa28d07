package model

import "time"

// Route maps a single keyword to the set of node identifiers it resolves
// to, with a confidence in [0,1]. Routes are a derived cache over node
// content, never a source of truth: the table can be discarded and
// rebuilt from the graph at any time without data loss.
type Route struct {
	Keyword    string    `json:"keyword"`
	NodeIDs    []string  `json:"node_ids"`
	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}
