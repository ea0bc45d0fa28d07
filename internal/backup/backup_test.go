package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

func seededStore(t *testing.T) *store.SQLite {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.InsertNode(ctx, model.Node{
		ID: "n1", Namespace: model.DefaultNamespace, Type: "concept",
		Name: "archived node", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, st.InsertNode(ctx, model.Node{
		ID: "n2", Namespace: model.DefaultNamespace, Type: "concept",
		Name: "second node", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, st.UpsertEdge(ctx, model.Edge{
		SourceID: "n1", TargetID: "n2", Type: "relates-to", Weight: 1, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, st.InsertExperience(ctx, model.Experience{
		ID: "e1", Type: model.TypeSolution, Content: "archived memory",
		Confidence: model.ConfidenceHigh, Score: 1, DecayRate: 0.003, CreatedAt: time.Now().UTC(),
	}))
	return st
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t)

	path := filepath.Join(t.TempDir(), Filename(time.Now()))
	header, err := Export(ctx, src, "default", path)
	require.NoError(t, err)
	assert.Equal(t, 2, header.NodeCount)
	assert.Equal(t, 1, header.EdgeCount)
	assert.Equal(t, 1, header.ExperienceCount)

	dst, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { dst.Close() })

	a, err := Import(ctx, dst, path)
	require.NoError(t, err)
	assert.Equal(t, "default", a.Workspace)

	node, err := dst.GetNode(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "archived node", node.Name)

	exp, err := dst.GetExperience(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "archived memory", exp.Content)
}

func TestImportReplacesExistingData(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t)
	path := filepath.Join(t.TempDir(), Filename(time.Now()))
	_, err := Export(ctx, src, "default", path)
	require.NoError(t, err)

	dst, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { dst.Close() })
	require.NoError(t, dst.InsertNode(ctx, model.Node{
		ID: "stale", Namespace: model.DefaultNamespace, Type: "concept",
		Name: "pre-import node", CreatedAt: time.Now().UTC(),
	}))

	_, err = Import(ctx, dst, path)
	require.NoError(t, err)

	_, err = dst.GetNode(ctx, "stale")
	assert.Error(t, err, "import replaces, not merges")
}

func TestReadHeaderWithoutDecompression(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t)
	path := filepath.Join(t.TempDir(), Filename(time.Now()))
	_, err := Export(ctx, src, "default", path)
	require.NoError(t, err)

	header, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, header.Version)
	assert.Equal(t, 2, header.NodeCount)
	assert.Contains(t, header.Checksum, "sha256:")
}

func TestReadRejectsCorruption(t *testing.T) {
	ctx := context.Background()
	src := seededStore(t)
	path := filepath.Join(t.TempDir(), Filename(time.Now()))
	_, err := Export(ctx, src, "default", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum")
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "mnemo-backup-20260314-092653.mnb", Filename(at))
}

func TestListSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, at := range times {
		require.NoError(t, os.WriteFile(filepath.Join(dir, Filename(at)), []byte("x"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o600))

	archives, err := List(dir)
	require.NoError(t, err)
	require.Len(t, archives, 3, "non-archive files are ignored")
	assert.Contains(t, archives[0].Path, "20260301")
	assert.Contains(t, archives[2].Path, "20260101")
}

func TestApplyRetentionCountPolicy(t *testing.T) {
	dir := t.TempDir()
	for month := 1; month <= 5; month++ {
		at := time.Date(2026, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, os.WriteFile(filepath.Join(dir, Filename(at)), []byte("x"), 0o600))
	}

	deleted, err := ApplyRetention(dir, &CountPolicy{MaxCount: 2})
	require.NoError(t, err)
	assert.Len(t, deleted, 3)

	remaining, err := List(dir)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Contains(t, remaining[0].Path, "20260501", "newest archives survive")
}

func TestListMissingDir(t *testing.T) {
	archives, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, archives)
}
