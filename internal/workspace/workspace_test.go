package workspace

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/model"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenCreatesActiveWorkspace(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()

	m, err := Open(root, cfg, discard())
	require.NoError(t, err)
	defer m.Close()

	h := m.Active()
	assert.Equal(t, "default", h.Name)
	assert.FileExists(t, filepath.Join(root, ".mnemo", "default", "mnemo.db"))

	// Engines are wired to the same store.
	n, err := h.Graph.AddNode(context.Background(), model.Node{Type: "concept", Name: "wired"})
	require.NoError(t, err)
	got, err := h.Store.GetNode(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, "wired", got.Name)
}

func TestOpenExtraWorkspaces(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()

	cfg := config.Default()
	cfg.ExtraWorkspaces = map[string]string{"shared": other}

	m, err := Open(root, cfg, discard())
	require.NoError(t, err)
	defer m.Close()

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "default", all[0].Name, "active workspace comes first")
	assert.Equal(t, "shared", all[1].Name)

	assert.NotNil(t, m.Get("shared"))
	assert.Nil(t, m.Get("missing"))
}

func TestOpenSkipsBrokenExtraWorkspace(t *testing.T) {
	root := t.TempDir()

	// A file where the workspace directory should be makes Open fail
	// for that workspace only.
	brokenParent := t.TempDir()
	broken := filepath.Join(brokenParent, "not-a-dir")
	require.NoError(t, os.WriteFile(broken, []byte("x"), 0o600))

	cfg := config.Default()
	cfg.ExtraWorkspaces = map[string]string{"broken": filepath.Join(broken, "ws")}

	m, err := Open(root, cfg, discard())
	require.NoError(t, err)
	defer m.Close()

	assert.Len(t, m.All(), 1, "broken extra workspace is skipped, not fatal")
}
