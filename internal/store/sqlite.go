package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/model"
)

// DBFileName is the database file created inside a workspace directory.
const DBFileName = "mnemo.db"

// SQLite implements Store on a single SQLite database in WAL mode.
// Reads may run concurrently; every mutation takes the write lock, so at
// most one mutating transaction is in flight per workspace.
type SQLite struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// Open creates (if needed) the workspace directory and opens its
// database, applying the schema.
func Open(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLite{db: db, dbPath: dbPath}, nil
}

// Path returns the location of the database file.
func (s *SQLite) Path() string { return s.dbPath }

// Close closes the underlying database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// --- Nodes ---

func (s *SQLite) InsertNode(ctx context.Context, n model.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, namespace, type, name, description, tags, properties, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Namespace, n.Type, n.Name, nullStr(n.Description),
		encodeStrings(n.Tags), encodeMap(n.Properties),
		fmtTime(n.CreatedAt), fmtTimePtr(n.UpdatedAt), fmtTimePtr(n.DeletedAt))
	if err != nil {
		return fault.StoreFailure(err, "insert node %s", n.ID)
	}
	return nil
}

func (s *SQLite) GetNode(ctx context.Context, id string) (*model.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNode(ctx, id)
}

func (s *SQLite) getNode(ctx context.Context, id string) (*model.Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, namespace, type, name, description, tags, properties, created_at, updated_at, deleted_at
		 FROM nodes WHERE id = ? AND deleted_at IS NULL`, id)

	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("node %s", id)
	}
	if err != nil {
		return nil, fault.StoreFailure(err, "get node %s", id)
	}
	return n, nil
}

func (s *SQLite) UpdateNode(ctx context.Context, id string, u NodeUpdate) (*model.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := []string{"updated_at = ?"}
	args := []any{fmtTime(time.Now().UTC())}
	if u.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Description != nil {
		set = append(set, "description = ?")
		args = append(args, nullStr(*u.Description))
	}
	if u.Tags != nil {
		set = append(set, "tags = ?")
		args = append(args, encodeStrings(*u.Tags))
	}
	if u.Properties != nil {
		set = append(set, "properties = ?")
		args = append(args, encodeMap(*u.Properties))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE nodes SET "+strings.Join(set, ", ")+" WHERE id = ? AND deleted_at IS NULL", args...)
	if err != nil {
		return nil, fault.StoreFailure(err, "update node %s", id)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fault.NotFound("node %s", id)
	}
	return s.getNode(ctx, id)
}

func (s *SQLite) SoftDeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		fmtTime(time.Now().UTC()), id)
	if err != nil {
		return fault.StoreFailure(err, "delete node %s", id)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fault.NotFound("node %s", id)
	}
	return nil
}

func (s *SQLite) RestoreNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return fault.StoreFailure(err, "restore node %s", id)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fault.NotFound("deleted node %s", id)
	}
	return nil
}

func (s *SQLite) QueryNodes(ctx context.Context, q NodeQuery) ([]model.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	var (
		sb   strings.Builder
		args []any
	)

	match := ftsMatchQuery(q.Text)
	if match != "" {
		sb.WriteString(`SELECT n.id, n.namespace, n.type, n.name, n.description, n.tags, n.properties, n.created_at, n.updated_at, n.deleted_at
			FROM nodes_fts f JOIN nodes n ON n.rowid = f.rowid
			WHERE nodes_fts MATCH ? AND n.deleted_at IS NULL`)
		args = append(args, match)
	} else {
		sb.WriteString(`SELECT n.id, n.namespace, n.type, n.name, n.description, n.tags, n.properties, n.created_at, n.updated_at, n.deleted_at
			FROM nodes n WHERE n.deleted_at IS NULL`)
	}

	if q.Namespace != "" {
		sb.WriteString(" AND n.namespace = ?")
		args = append(args, q.Namespace)
	}
	if q.Type != "" {
		sb.WriteString(" AND n.type = ?")
		args = append(args, q.Type)
	}
	for _, tag := range q.Tags {
		// Tags are stored as a JSON array; quoted containment match.
		sb.WriteString(" AND n.tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}

	if match != "" {
		sb.WriteString(" ORDER BY f.rank")
	} else {
		sb.WriteString(" ORDER BY n.created_at DESC")
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fault.StoreFailure(err, "query nodes")
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fault.StoreFailure(err, "scan node")
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.StoreFailure(err, "query nodes")
	}
	return nodes, nil
}

// --- Edges ---

func (s *SQLite) UpsertEdge(ctx context.Context, e model.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO edges (source_id, target_id, type, weight, properties, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source_id, target_id, type)
		 DO UPDATE SET weight = excluded.weight, properties = excluded.properties`,
		e.SourceID, e.TargetID, e.Type, e.Weight, encodeMap(e.Properties), fmtTime(e.CreatedAt))
	if err != nil {
		return fault.StoreFailure(err, "upsert edge %s->%s", e.SourceID, e.TargetID)
	}
	return nil
}

func (s *SQLite) DeleteEdge(ctx context.Context, sourceID, targetID, edgeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM edges WHERE source_id = ? AND target_id = ? AND type = ?`,
		sourceID, targetID, edgeType)
	if err != nil {
		return fault.StoreFailure(err, "delete edge %s->%s", sourceID, targetID)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fault.NotFound("edge %s->%s (%s)", sourceID, targetID, edgeType)
	}
	return nil
}

func (s *SQLite) GetEdges(ctx context.Context, f EdgeFilter) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT source_id, target_id, type, weight, properties, created_at FROM edges WHERE 1=1`)
	if f.SourceID != "" {
		sb.WriteString(" AND source_id = ?")
		args = append(args, f.SourceID)
	}
	if f.TargetID != "" {
		sb.WriteString(" AND target_id = ?")
		args = append(args, f.TargetID)
	}
	if f.Type != "" {
		sb.WriteString(" AND type = ?")
		args = append(args, f.Type)
	}
	sb.WriteString(" ORDER BY weight DESC, created_at")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fault.StoreFailure(err, "query edges")
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		var (
			e          model.Edge
			props      sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Type, &e.Weight, &props, &createdRaw); err != nil {
			return nil, fault.StoreFailure(err, "scan edge")
		}
		e.Properties = decodeMap(props)
		e.CreatedAt = parseTime(createdRaw)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.StoreFailure(err, "query edges")
	}
	return edges, nil
}

// --- Experiences ---

func (s *SQLite) InsertExperience(ctx context.Context, e model.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO experiences (id, type, content, context, confidence, score, decay_rate, tags,
		                          access_count, promoted_to_node_id, created_at, last_accessed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.Content, nullStr(e.Context), string(e.Confidence),
		e.Score, e.DecayRate, encodeStrings(e.Tags),
		e.AccessCount, nullStr(e.PromotedToNodeID), fmtTime(e.CreatedAt), fmtTimePtr(e.LastAccessed))
	if err != nil {
		return fault.StoreFailure(err, "insert experience %s", e.ID)
	}
	return nil
}

func (s *SQLite) GetExperience(ctx context.Context, id string) (*model.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getExperience(ctx, id)
}

func (s *SQLite) getExperience(ctx context.Context, id string) (*model.Experience, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, content, context, confidence, score, decay_rate, tags,
		        access_count, promoted_to_node_id, created_at, last_accessed
		 FROM experiences WHERE id = ?`, id)

	e, err := scanExperience(row)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("experience %s", id)
	}
	if err != nil {
		return nil, fault.StoreFailure(err, "get experience %s", id)
	}
	return e, nil
}

func (s *SQLite) TouchExperience(ctx context.Context, id string) (*model.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single-statement read-modify-write keeps the increment atomic.
	res, err := s.db.ExecContext(ctx,
		`UPDATE experiences SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		fmtTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fault.StoreFailure(err, "touch experience %s", id)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fault.NotFound("experience %s", id)
	}
	return s.getExperience(ctx, id)
}

func (s *SQLite) QueryExperiences(ctx context.Context, q ExperienceQuery) ([]model.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	var (
		sb   strings.Builder
		args []any
	)

	match := ftsMatchQuery(q.Text)
	if match != "" {
		sb.WriteString(`SELECT e.id, e.type, e.content, e.context, e.confidence, e.score, e.decay_rate, e.tags,
			e.access_count, e.promoted_to_node_id, e.created_at, e.last_accessed
			FROM experiences_fts f JOIN experiences e ON e.rowid = f.rowid
			WHERE experiences_fts MATCH ?`)
		args = append(args, match)
	} else {
		sb.WriteString(`SELECT e.id, e.type, e.content, e.context, e.confidence, e.score, e.decay_rate, e.tags,
			e.access_count, e.promoted_to_node_id, e.created_at, e.last_accessed
			FROM experiences e WHERE 1=1`)
	}

	if q.Type != "" {
		sb.WriteString(" AND e.type = ?")
		args = append(args, string(q.Type))
	}

	if match != "" {
		sb.WriteString(" ORDER BY f.rank")
	} else {
		sb.WriteString(" ORDER BY e.created_at DESC")
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fault.StoreFailure(err, "query experiences")
	}
	defer rows.Close()

	var exps []model.Experience
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fault.StoreFailure(err, "scan experience")
		}
		exps = append(exps, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.StoreFailure(err, "query experiences")
	}
	return exps, nil
}

func (s *SQLite) DeleteExperience(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM experiences WHERE id = ?`, id)
	if err != nil {
		return fault.StoreFailure(err, "delete experience %s", id)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fault.NotFound("experience %s", id)
	}
	return nil
}

func (s *SQLite) PromoteExperience(ctx context.Context, expID string, n model.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.StoreFailure(err, "begin promotion of %s", expID)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO nodes (id, namespace, type, name, description, tags, properties, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Namespace, n.Type, n.Name, nullStr(n.Description),
		encodeStrings(n.Tags), encodeMap(n.Properties), fmtTime(n.CreatedAt))
	if err != nil {
		return fault.StoreFailure(err, "promote experience %s: insert node", expID)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE experiences SET promoted_to_node_id = ?
		 WHERE id = ? AND (promoted_to_node_id IS NULL OR promoted_to_node_id = '')`,
		n.ID, expID)
	if err != nil {
		return fault.StoreFailure(err, "promote experience %s: stamp node id", expID)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fault.Conflict("experience %s is missing or already promoted", expID)
	}

	if err := tx.Commit(); err != nil {
		return fault.StoreFailure(err, "commit promotion of %s", expID)
	}
	return nil
}

// --- Routes ---

func (s *SQLite) GetRoutes(ctx context.Context, keywords []string) ([]model.Route, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(keywords))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keywords))
	for i, kw := range keywords {
		args[i] = kw
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, node_ids, confidence, updated_at FROM routes WHERE keyword IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fault.StoreFailure(err, "query routes")
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		var (
			r          model.Route
			idsRaw     string
			updatedRaw string
		)
		if err := rows.Scan(&r.Keyword, &idsRaw, &r.Confidence, &updatedRaw); err != nil {
			return nil, fault.StoreFailure(err, "scan route")
		}
		if err := json.Unmarshal([]byte(idsRaw), &r.NodeIDs); err != nil {
			// Corrupted cache entry; skip rather than fail the lookup.
			continue
		}
		r.UpdatedAt = parseTime(updatedRaw)
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.StoreFailure(err, "query routes")
	}
	return routes, nil
}

func (s *SQLite) UpsertRoute(ctx context.Context, r model.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := json.Marshal(r.NodeIDs)
	if err != nil {
		return fault.StoreFailure(err, "encode route %q", r.Keyword)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO routes (keyword, node_ids, confidence, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(keyword)
		 DO UPDATE SET node_ids = excluded.node_ids, confidence = excluded.confidence, updated_at = excluded.updated_at`,
		r.Keyword, string(ids), r.Confidence, fmtTime(time.Now().UTC()))
	if err != nil {
		return fault.StoreFailure(err, "upsert route %q", r.Keyword)
	}
	return nil
}

func (s *SQLite) DeleteRoutes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM routes`); err != nil {
		return fault.StoreFailure(err, "clear routes")
	}
	return nil
}

// --- Stats, snapshot ---

func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{PerNamespace: make(map[string]int)}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM nodes WHERE deleted_at IS NULL`, &st.Nodes},
		{`SELECT COUNT(*) FROM edges`, &st.Edges},
		{`SELECT COUNT(*) FROM experiences`, &st.Experiences},
		{`SELECT COUNT(*) FROM routes`, &st.Routes},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, fault.StoreFailure(err, "count records")
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT namespace, COUNT(*) FROM nodes WHERE deleted_at IS NULL GROUP BY namespace`)
	if err != nil {
		return Stats{}, fault.StoreFailure(err, "count namespaces")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ns string
			n  int
		)
		if err := rows.Scan(&ns, &n); err != nil {
			return Stats{}, fault.StoreFailure(err, "scan namespace count")
		}
		st.PerNamespace[ns] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fault.StoreFailure(err, "count namespaces")
	}
	return st, nil
}

func (s *SQLite) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, namespace, type, name, description, tags, properties, created_at, updated_at, deleted_at FROM nodes`)
	if err != nil {
		return nil, fault.StoreFailure(err, "snapshot nodes")
	}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return nil, fault.StoreFailure(err, "scan node")
		}
		snap.Nodes = append(snap.Nodes, *n)
	}
	rows.Close()

	edges, err := s.GetEdges(ctx, EdgeFilter{})
	if err != nil {
		return nil, err
	}
	snap.Edges = edges

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, type, content, context, confidence, score, decay_rate, tags,
		        access_count, promoted_to_node_id, created_at, last_accessed FROM experiences`)
	if err != nil {
		return nil, fault.StoreFailure(err, "snapshot experiences")
	}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			rows.Close()
			return nil, fault.StoreFailure(err, "scan experience")
		}
		snap.Experiences = append(snap.Experiences, *e)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT keyword, node_ids, confidence, updated_at FROM routes`)
	if err != nil {
		return nil, fault.StoreFailure(err, "snapshot routes")
	}
	for rows.Next() {
		var (
			r          model.Route
			idsRaw     string
			updatedRaw string
		)
		if err := rows.Scan(&r.Keyword, &idsRaw, &r.Confidence, &updatedRaw); err != nil {
			rows.Close()
			return nil, fault.StoreFailure(err, "scan route")
		}
		_ = json.Unmarshal([]byte(idsRaw), &r.NodeIDs)
		r.UpdatedAt = parseTime(updatedRaw)
		snap.Routes = append(snap.Routes, r)
	}
	rows.Close()

	return snap, nil
}

func (s *SQLite) RestoreSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.StoreFailure(err, "begin restore")
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "experiences", "routes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fault.StoreFailure(err, "clear %s", table)
		}
	}

	for _, n := range snap.Nodes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, namespace, type, name, description, tags, properties, created_at, updated_at, deleted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Namespace, n.Type, n.Name, nullStr(n.Description),
			encodeStrings(n.Tags), encodeMap(n.Properties),
			fmtTime(n.CreatedAt), fmtTimePtr(n.UpdatedAt), fmtTimePtr(n.DeletedAt))
		if err != nil {
			return fault.StoreFailure(err, "restore node %s", n.ID)
		}
	}
	for _, e := range snap.Edges {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO edges (source_id, target_id, type, weight, properties, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			e.SourceID, e.TargetID, e.Type, e.Weight, encodeMap(e.Properties), fmtTime(e.CreatedAt))
		if err != nil {
			return fault.StoreFailure(err, "restore edge %s->%s", e.SourceID, e.TargetID)
		}
	}
	for _, e := range snap.Experiences {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO experiences (id, type, content, context, confidence, score, decay_rate, tags,
			                          access_count, promoted_to_node_id, created_at, last_accessed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.Type), e.Content, nullStr(e.Context), string(e.Confidence),
			e.Score, e.DecayRate, encodeStrings(e.Tags),
			e.AccessCount, nullStr(e.PromotedToNodeID), fmtTime(e.CreatedAt), fmtTimePtr(e.LastAccessed))
		if err != nil {
			return fault.StoreFailure(err, "restore experience %s", e.ID)
		}
	}
	for _, r := range snap.Routes {
		ids, err := json.Marshal(r.NodeIDs)
		if err != nil {
			return fault.StoreFailure(err, "encode route %q", r.Keyword)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO routes (keyword, node_ids, confidence, updated_at) VALUES (?, ?, ?, ?)`,
			r.Keyword, string(ids), r.Confidence, fmtTime(r.UpdatedAt))
		if err != nil {
			return fault.StoreFailure(err, "restore route %q", r.Keyword)
		}
	}

	if err := tx.Commit(); err != nil {
		return fault.StoreFailure(err, "commit restore")
	}
	return nil
}
