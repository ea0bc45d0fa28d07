// Package workspace wires one store plus its engines into a named
// workspace and manages the set of workspaces a project can reach:
// the active one plus any extra workspaces configured for
// cross-workspace recall.
package workspace

import (
	"fmt"
	"log/slog"

	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/experience"
	"github.com/mnemohq/mnemo/internal/graph"
	"github.com/mnemohq/mnemo/internal/router"
	"github.com/mnemohq/mnemo/internal/store"
)

// Handle bundles a workspace's store and engines.
type Handle struct {
	Name       string
	Dir        string
	Store      *store.SQLite
	Graph      *graph.Engine
	Experience *experience.Engine
	Router     *router.Router
}

// Manager holds the active workspace and any extra ones.
type Manager struct {
	active *Handle
	extras []*Handle
	log    *slog.Logger
}

// Open opens the active workspace named by cfg.Workspace plus every
// configured extra workspace. Extra workspaces that fail to open are
// logged and skipped; the active one is required.
func Open(root string, cfg *config.Config, log *slog.Logger) (*Manager, error) {
	m := &Manager{log: log}

	active, err := open(root, cfg, cfg.Workspace, log)
	if err != nil {
		return nil, fmt.Errorf("open workspace %q: %w", cfg.Workspace, err)
	}
	m.active = active

	for name := range cfg.ExtraWorkspaces {
		if name == cfg.Workspace {
			continue
		}
		h, err := open(root, cfg, name, log)
		if err != nil {
			log.Warn("skipping extra workspace", "workspace", name, "error", err)
			continue
		}
		m.extras = append(m.extras, h)
	}
	return m, nil
}

func open(root string, cfg *config.Config, name string, log *slog.Logger) (*Handle, error) {
	dir := cfg.WorkspaceDir(root, name)
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}

	wsLog := log.With("workspace", name)
	return &Handle{
		Name:  name,
		Dir:   dir,
		Store: st,
		Graph: graph.New(st, wsLog),
		Experience: experience.New(st, wsLog, experience.Options{
			HalfLifeOverrides: cfg.Decay.HalfLifeDays,
			PromoteThreshold:  cfg.Promotion.AccessThreshold,
		}),
		Router: router.New(st, wsLog, router.Options{
			MaxKeywords:   cfg.Router.MaxKeywords,
			MinConfidence: cfg.Router.MinConfidence,
		}),
	}, nil
}

// Active returns the active workspace.
func (m *Manager) Active() *Handle { return m.active }

// All returns every open workspace, active first.
func (m *Manager) All() []*Handle {
	return append([]*Handle{m.active}, m.extras...)
}

// Get returns the named workspace, or nil if it is not open.
func (m *Manager) Get(name string) *Handle {
	for _, h := range m.All() {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// Close closes every workspace store. The first error wins but all
// stores are closed.
func (m *Manager) Close() error {
	var firstErr error
	for _, h := range m.All() {
		if err := h.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
