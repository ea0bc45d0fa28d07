package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/mnemohq/mnemo/internal/store"
)

// FilePrefix names archive files: mnemo-backup-<timestamp>.mnb.
const (
	FilePrefix = "mnemo-backup-"
	FileExt    = ".mnb"
)

// Filename builds the archive file name for a timestamp.
func Filename(at time.Time) string {
	return FilePrefix + at.UTC().Format("20060102-150405") + FileExt
}

// Export snapshots the workspace store into an archive at path.
func Export(ctx context.Context, st store.Store, workspace, path string) (*Header, error) {
	snap, err := st.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshotting workspace: %w", err)
	}

	a := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Workspace: workspace,
		Snapshot:  *snap,
	}
	if err := Write(path, a); err != nil {
		return nil, err
	}

	return &Header{
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		Workspace:       a.Workspace,
		NodeCount:       len(a.Nodes),
		EdgeCount:       len(a.Edges),
		ExperienceCount: len(a.Experiences),
	}, nil
}

// Import replaces the workspace's contents with the archive at path.
// The restore is transactional: a failed import leaves the workspace
// untouched.
func Import(ctx context.Context, st store.Store, path string) (*Archive, error) {
	a, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := st.RestoreSnapshot(ctx, &a.Snapshot); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	return a, nil
}
