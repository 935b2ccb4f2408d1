// Package checkpoint persists which keywords have completed or
// permanently failed, so an interrupted run can resume without
// repeating work. Failed keys are deliberately skipped on resume too;
// retrying them requires clearing them explicitly.
package checkpoint

import (
	"fmt"
	"path/filepath"

	"github.com/pratama/articleforge/internal/config"
)

// Store is the resumable-progress contract. Mutations are in-memory;
// Persist writes a full, self-consistent snapshot.
type Store interface {
	// IsDone reports whether the key completed or failed in a prior
	// run (or earlier in this one). Checked before any work starts.
	IsDone(key string) bool

	MarkProcessed(key string)
	MarkFailed(key string)

	// Persist writes the current state. Failures degrade resumability,
	// not correctness; callers log and continue.
	Persist() error

	Processed() []string
	Failed() []string

	// ClearFailed drops the failed set so those keys are re-attempted
	// on the next run.
	ClearFailed() error

	Close() error
}

// Open builds the store selected by configuration. The file driver is
// the default; its side file lives next to the run output unless a
// path is configured.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Checkpoint.Driver {
	case "", "file":
		path := cfg.Checkpoint.Path
		if path == "" {
			path = SidecarPath(cfg.Run.OutputDir)
		}
		return OpenFileStore(path), nil
	case "sqlite", "postgres":
		return OpenDBStore(&cfg.Checkpoint)
	default:
		return nil, fmt.Errorf("unknown checkpoint driver %q", cfg.Checkpoint.Driver)
	}
}

// SidecarPath derives the checkpoint side-file path from the run's
// output directory.
func SidecarPath(outputDir string) string {
	return filepath.Join(outputDir, ".articleforge-checkpoint.json")
}
