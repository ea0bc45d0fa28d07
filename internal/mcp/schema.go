package mcp

import (
	"github.com/mnemohq/mnemo/internal/experience"
	"github.com/mnemohq/mnemo/internal/graph"
	"github.com/mnemohq/mnemo/internal/intel"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

// LearnInput defines the input for the mnemo_learn tool.
type LearnInput struct {
	Content    string   `json:"content" jsonschema:"description=The fact or lesson to store,required"`
	Type       string   `json:"type" jsonschema:"description=Experience type: 'solution', 'pattern', 'decision', 'workaround', or 'gotcha',required"`
	Confidence string   `json:"confidence,omitempty" jsonschema:"description=Confidence level: 'high' (default, creates a permanent node), 'medium', or 'low'"`
	Situation  string   `json:"situation,omitempty" jsonschema:"description=The situation in which the fact was learned"`
	Tags       []string `json:"tags,omitempty" jsonschema:"description=Free-form tags for retrieval"`
}

// LearnOutput defines the output for the mnemo_learn tool.
type LearnOutput struct {
	StoredAs     string `json:"stored_as" jsonschema:"description=Where the fact landed: 'node' or 'experience'"`
	NodeID       string `json:"node_id,omitempty" jsonschema:"description=ID of the permanent node (high confidence only)"`
	ExperienceID string `json:"experience_id" jsonschema:"description=ID of the stored experience"`
	Routing      string `json:"routing" jsonschema:"description=Whether the fact was indexed for keyword routing"`
	Message      string `json:"message" jsonschema:"description=Human-readable result message"`
}

// RecallInput defines the input for the mnemo_recall tool.
type RecallInput struct {
	Topic        string  `json:"topic" jsonschema:"description=What to recall knowledge about,required"`
	Limit        int     `json:"limit,omitempty" jsonschema:"description=Maximum results (1-50, default 10)"`
	MinRelevance float64 `json:"min_relevance,omitempty" jsonschema:"description=Drop hits below this relevance (default 0)"`
}

// RecallOutput defines the output for the mnemo_recall and
// mnemo_crossref tools.
type RecallOutput struct {
	Hits  []intel.RecallHit `json:"hits" jsonschema:"description=Ranked knowledge hits"`
	Count int               `json:"count" jsonschema:"description=Number of hits"`
}

// CrossrefInput defines the input for the mnemo_crossref tool.
type CrossrefInput struct {
	Problem string `json:"problem" jsonschema:"description=The problem to search every workspace for,required"`
	Limit   int    `json:"limit,omitempty" jsonschema:"description=Maximum results (1-50, default 10)"`
}

// ContextInput defines the input for the mnemo_context tool.
type ContextInput struct {
	Query  string `json:"query" jsonschema:"description=Free text to resolve into relevant knowledge,required"`
	Detail string `json:"detail,omitempty" jsonschema:"description=Detail level: 'summary' (default) or 'full'"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum nodes (1-50, default 10)"`
}

// ContextOutput defines the output for the mnemo_context tool.
type ContextOutput struct {
	Query     string              `json:"query"`
	Detail    string              `json:"detail"`
	FromIndex bool                `json:"from_index" jsonschema:"description=True when the route index resolved the query, false on full-text fallback"`
	Nodes     []intel.ContextNode `json:"nodes"`
	Count     int                 `json:"count"`
}

// RelatedInput defines the input for the mnemo_related tool.
type RelatedInput struct {
	NodeID   string `json:"node_id" jsonschema:"description=Node to start the traversal from,required"`
	Depth    int    `json:"depth,omitempty" jsonschema:"description=Traversal depth (1-5, default 1)"`
	EdgeType string `json:"edge_type,omitempty" jsonschema:"description=Follow only edges of this type"`
	Mode     string `json:"mode,omitempty" jsonschema:"description=Traversal mode: 'bfs' (default) or 'dfs'"`
}

// RelatedOutput defines the output for the mnemo_related tool.
type RelatedOutput struct {
	Hops  []graph.TraversalHop `json:"hops" jsonschema:"description=Reached nodes with their hop distance"`
	Count int                  `json:"count"`
}

// AddInput defines the input for the mnemo_add tool.
type AddInput struct {
	Name        string         `json:"name" jsonschema:"description=Node name,required"`
	Type        string         `json:"type" jsonschema:"description=Node type (e.g. 'concept', 'component', 'convention'),required"`
	Namespace   string         `json:"namespace,omitempty" jsonschema:"description=Namespace (default 'knowledge')"`
	Description string         `json:"description,omitempty" jsonschema:"description=Longer description"`
	Tags        []string       `json:"tags,omitempty" jsonschema:"description=Free-form tags"`
	Properties  map[string]any `json:"properties,omitempty" jsonschema:"description=Arbitrary key-value properties"`
}

// AddOutput defines the output for the mnemo_add tool.
type AddOutput struct {
	Node    *model.Node `json:"node"`
	Message string      `json:"message"`
}

// ConnectInput defines the input for the mnemo_connect tool.
type ConnectInput struct {
	Source     string         `json:"source" jsonschema:"description=Source node ID,required"`
	Target     string         `json:"target" jsonschema:"description=Target node ID,required"`
	Type       string         `json:"type" jsonschema:"description=Edge type (e.g. 'depends-on', 'related-to'),required"`
	Weight     float64        `json:"weight,omitempty" jsonschema:"description=Relationship strength 0-1 (default 1)"`
	Properties map[string]any `json:"properties,omitempty" jsonschema:"description=Arbitrary edge properties"`
}

// ConnectOutput defines the output for the mnemo_connect tool.
type ConnectOutput struct {
	Edge    *model.Edge `json:"edge"`
	Message string      `json:"message"`
}

// QueryInput defines the input for the mnemo_query tool.
type QueryInput struct {
	Text      string   `json:"text,omitempty" jsonschema:"description=Full-text search over names, descriptions and tags"`
	Namespace string   `json:"namespace,omitempty" jsonschema:"description=Restrict to a namespace"`
	Type      string   `json:"type,omitempty" jsonschema:"description=Restrict to a node type"`
	Tags      []string `json:"tags,omitempty" jsonschema:"description=Require all of these tags"`
	Limit     int      `json:"limit,omitempty" jsonschema:"description=Maximum results (1-50, default 10)"`
	Offset    int      `json:"offset,omitempty" jsonschema:"description=Results to skip, for paging"`
}

// QueryOutput defines the output for the mnemo_query tool.
type QueryOutput struct {
	Nodes []model.Node `json:"nodes"`
	Count int          `json:"count"`
}

// RemoveInput defines the input for the mnemo_remove tool.
type RemoveInput struct {
	NodeID  string `json:"node_id" jsonschema:"description=Node to remove or restore,required"`
	Restore bool   `json:"restore,omitempty" jsonschema:"description=Restore a previously removed node instead of removing"`
}

// RemoveOutput defines the output for the mnemo_remove tool.
type RemoveOutput struct {
	NodeID   string `json:"node_id"`
	Restored bool   `json:"restored"`
	Message  string `json:"message"`
}

// StatusInput defines the input for the mnemo_status tool.
type StatusInput struct{}

// StatusOutput defines the output for the mnemo_status tool.
type StatusOutput struct {
	Workspace  string      `json:"workspace" jsonschema:"description=Active workspace name"`
	Workspaces []string    `json:"workspaces" jsonschema:"description=All open workspaces, active first"`
	Stats      store.Stats `json:"stats"`
}

// SaveInput defines the input for the mnemo_save tool.
type SaveInput struct {
	Content    string   `json:"content" jsonschema:"description=The experience to store,required"`
	Type       string   `json:"type" jsonschema:"description=Experience type: 'solution', 'pattern', 'decision', 'workaround', or 'gotcha',required"`
	Situation  string   `json:"situation,omitempty" jsonschema:"description=The situation the experience applies to"`
	Confidence string   `json:"confidence,omitempty" jsonschema:"description=Confidence level: 'high' (default), 'medium', or 'low'"`
	Tags       []string `json:"tags,omitempty" jsonschema:"description=Free-form tags"`
}

// SaveOutput defines the output for the mnemo_save tool.
type SaveOutput struct {
	Experience *model.Experience `json:"experience"`
	Message    string            `json:"message"`
}

// SearchInput defines the input for the mnemo_search tool.
type SearchInput struct {
	Query        string  `json:"query,omitempty" jsonschema:"description=Full-text search over experience content"`
	Type         string  `json:"type,omitempty" jsonschema:"description=Restrict to an experience type"`
	MinRelevance float64 `json:"min_relevance,omitempty" jsonschema:"description=Drop hits below this relevance (default 0)"`
	Limit        int     `json:"limit,omitempty" jsonschema:"description=Maximum results (1-50, default 10)"`
	Offset       int     `json:"offset,omitempty" jsonschema:"description=Results to skip, for paging"`
}

// SearchOutput defines the output for the mnemo_search tool.
type SearchOutput struct {
	Hits  []experience.Hit `json:"hits" jsonschema:"description=Experiences with live relevance"`
	Count int              `json:"count"`
}

// PruneInput defines the input for the mnemo_prune tool.
type PruneInput struct {
	Threshold float64 `json:"threshold,omitempty" jsonschema:"description=Delete experiences with relevance strictly below this (default 0.01)"`
}

// PruneOutput defines the output for the mnemo_prune tool.
type PruneOutput struct {
	Pruned  int    `json:"pruned" jsonschema:"description=Number of experiences deleted"`
	Message string `json:"message"`
}

// BackupInput defines the input for the mnemo_backup tool.
type BackupInput struct {
	Path string `json:"path,omitempty" jsonschema:"description=Archive file path (default: timestamped file under .mnemo/backups)"`
}

// BackupOutput defines the output for the mnemo_backup tool.
type BackupOutput struct {
	Path            string `json:"path"`
	Checksum        string `json:"checksum"`
	NodeCount       int    `json:"node_count"`
	EdgeCount       int    `json:"edge_count"`
	ExperienceCount int    `json:"experience_count"`
}

// RestoreInput defines the input for the mnemo_restore tool.
type RestoreInput struct {
	Path string `json:"path" jsonschema:"description=Archive file to restore from. Replaces the workspace's contents,required"`
}

// RestoreOutput defines the output for the mnemo_restore tool.
type RestoreOutput struct {
	Workspace       string `json:"workspace" jsonschema:"description=Workspace name recorded in the archive"`
	NodeCount       int    `json:"node_count"`
	EdgeCount       int    `json:"edge_count"`
	ExperienceCount int    `json:"experience_count"`
	Message         string `json:"message"`
}
