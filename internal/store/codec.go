package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/mnemohq/mnemo/internal/model"
)

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNode(sc scanner) (*model.Node, error) {
	var (
		n                        model.Node
		description, tags, props sql.NullString
		createdRaw               string
		updatedRaw, deletedRaw   sql.NullString
	)
	err := sc.Scan(&n.ID, &n.Namespace, &n.Type, &n.Name, &description,
		&tags, &props, &createdRaw, &updatedRaw, &deletedRaw)
	if err != nil {
		return nil, err
	}
	n.Description = description.String
	n.Tags = decodeStrings(tags)
	n.Properties = decodeMap(props)
	n.CreatedAt = parseTime(createdRaw)
	n.UpdatedAt = parseTimePtr(updatedRaw)
	n.DeletedAt = parseTimePtr(deletedRaw)
	return &n, nil
}

func scanExperience(sc scanner) (*model.Experience, error) {
	var (
		e                       model.Experience
		typ, confidence         string
		context, tags, promoted sql.NullString
		createdRaw              string
		accessedRaw             sql.NullString
	)
	err := sc.Scan(&e.ID, &typ, &e.Content, &context, &confidence,
		&e.Score, &e.DecayRate, &tags, &e.AccessCount, &promoted,
		&createdRaw, &accessedRaw)
	if err != nil {
		return nil, err
	}
	e.Type = model.ExperienceType(typ)
	e.Context = context.String
	e.Confidence = model.Confidence(confidence)
	e.Tags = decodeStrings(tags)
	e.PromotedToNodeID = promoted.String
	e.CreatedAt = parseTime(createdRaw)
	e.LastAccessed = parseTimePtr(accessedRaw)
	return &e, nil
}

// encodeStrings renders a tag list as a JSON array, NULL when empty.
func encodeStrings(v []string) any {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodeStrings(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil
	}
	return out
}

// encodeMap renders properties as a JSON object, NULL when empty.
func encodeMap(v map[string]any) any {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodeMap(v sql.NullString) map[string]any {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil
	}
	return out
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t := parseTime(v.String)
	return &t
}

// ftsMatchQuery converts free text into an FTS5 MATCH expression: each
// token is double-quoted so query syntax in user input cannot leak
// through, and tokens are OR-joined for broad matching. Returns "" when
// the text yields no tokens, which callers treat as "no text filter".
func ftsMatchQuery(text string) string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' || r == '_' || r == '-')
	})
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}
