package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    namespace TEXT NOT NULL DEFAULT 'knowledge',
    type TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    tags TEXT,        -- JSON array
    properties TEXT,  -- JSON object
    created_at TEXT NOT NULL,
    updated_at TEXT,
    deleted_at TEXT   -- NULL = live
);
CREATE INDEX IF NOT EXISTS idx_nodes_namespace ON nodes(namespace);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);

CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
    name, description, tags,
    content='nodes', content_rowid='rowid'
);

CREATE TABLE IF NOT EXISTS edges (
    source_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    type TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    properties TEXT,
    created_at TEXT NOT NULL,
    PRIMARY KEY (source_id, target_id, type)
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

CREATE TABLE IF NOT EXISTS experiences (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    content TEXT NOT NULL,
    context TEXT,
    confidence TEXT NOT NULL DEFAULT 'high',
    score REAL NOT NULL DEFAULT 1.0,
    decay_rate REAL NOT NULL,
    tags TEXT,
    access_count INTEGER NOT NULL DEFAULT 0,
    promoted_to_node_id TEXT,
    created_at TEXT NOT NULL,
    last_accessed TEXT
);
CREATE INDEX IF NOT EXISTS idx_exp_type ON experiences(type);

CREATE VIRTUAL TABLE IF NOT EXISTS experiences_fts USING fts5(
    content, context, tags,
    content='experiences', content_rowid='rowid'
);

CREATE TABLE IF NOT EXISTS routes (
    keyword TEXT PRIMARY KEY,
    node_ids TEXT NOT NULL,  -- JSON array
    confidence REAL NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

-- FTS sync triggers (external-content tables need explicit maintenance)
CREATE TRIGGER IF NOT EXISTS nodes_fts_insert AFTER INSERT ON nodes BEGIN
    INSERT INTO nodes_fts(rowid, name, description, tags)
    VALUES (new.rowid, new.name, new.description, new.tags);
END;
CREATE TRIGGER IF NOT EXISTS nodes_fts_delete AFTER DELETE ON nodes BEGIN
    INSERT INTO nodes_fts(nodes_fts, rowid, name, description, tags)
    VALUES ('delete', old.rowid, old.name, old.description, old.tags);
END;
CREATE TRIGGER IF NOT EXISTS nodes_fts_update AFTER UPDATE ON nodes BEGIN
    INSERT INTO nodes_fts(nodes_fts, rowid, name, description, tags)
    VALUES ('delete', old.rowid, old.name, old.description, old.tags);
    INSERT INTO nodes_fts(rowid, name, description, tags)
    VALUES (new.rowid, new.name, new.description, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS exp_fts_insert AFTER INSERT ON experiences BEGIN
    INSERT INTO experiences_fts(rowid, content, context, tags)
    VALUES (new.rowid, new.content, new.context, new.tags);
END;
CREATE TRIGGER IF NOT EXISTS exp_fts_delete AFTER DELETE ON experiences BEGIN
    INSERT INTO experiences_fts(experiences_fts, rowid, content, context, tags)
    VALUES ('delete', old.rowid, old.content, old.context, old.tags);
END;
CREATE TRIGGER IF NOT EXISTS exp_fts_update AFTER UPDATE ON experiences BEGIN
    INSERT INTO experiences_fts(experiences_fts, rowid, content, context, tags)
    VALUES ('delete', old.rowid, old.content, old.context, old.tags);
    INSERT INTO experiences_fts(rowid, content, context, tags)
    VALUES (new.rowid, new.content, new.context, new.tags);
END;
`

// InitSchema applies the schema to db and records the schema version.
// It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`,
		SchemaVersion, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}
