// Package staging implements the safe staging store: task-scoped copies of
// caller-owned media files, made before any network operation begins, so
// two concurrently queued tasks can never race on the same file.
package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vibecast/vibecast/internal/filex"
	"github.com/vibecast/vibecast/internal/logging"
)

// Roles used as staged file names. One file per role per task.
const (
	RoleAudio   = "audio"
	RoleImage   = "image"
	RoleVideo   = "video"
	RoleOverlay = "overlay"
)

// Store copies source files into <base>/<taskID>/<role><ext>. Files staged
// here are deleted by the queue's cleanup step, never by the caller.
type Store struct {
	base string
	log  logging.Logger
}

// New returns a Store rooted at base.
func New(base string, log logging.Logger) *Store {
	return &Store{base: base, log: log.With("module", "staging")}
}

// Base returns the staging root directory.
func (s *Store) Base() string {
	return s.base
}

// TaskDir returns the staging directory for a task.
func (s *Store) TaskDir(taskID string) string {
	return filepath.Join(s.base, taskID)
}

// Stage copies path into the task's staging directory and returns the
// staged path. Staging fails soft: on any copy error the original path is
// returned, so a degraded copy never aborts the task.
func (s *Store) Stage(ctx context.Context, path, taskID, role string) string {
	if path == "" {
		return ""
	}

	staged := filepath.Join(s.TaskDir(taskID), role+filepath.Ext(path))
	if err := filex.CopyFile(path, staged); err != nil {
		s.log.Warn(ctx, "staging failed, falling back to original path",
			"task", taskID, "role", role, "error", err)
		return path
	}
	return staged
}

// Place returns a writable path inside the task's staging directory for a
// derived asset (e.g. the composited video), creating the directory if
// needed.
func (s *Store) Place(taskID, name string) (string, error) {
	dir := s.TaskDir(taskID)
	if err := filex.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("staging dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// Cleanup removes every file staged for the task.
func (s *Store) Cleanup(taskID string) error {
	if taskID == "" {
		return nil
	}
	if err := os.RemoveAll(s.TaskDir(taskID)); err != nil {
		return fmt.Errorf("cleanup %s: %w", taskID, err)
	}
	return nil
}
