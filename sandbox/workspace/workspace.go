package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// File permission constants
const (
	DirPermission  = 0o700
	FilePermission = 0o600
)

// Manager creates and destroys per-attempt workspace directories.
type Manager struct {
	logger *zap.Logger
	root   string
}

// ManagerOption defines a functional option for Manager
type ManagerOption func(*Manager)

// WithRoot places workspaces under a specific parent directory instead
// of the system temp directory.
func WithRoot(root string) ManagerOption {
	return func(m *Manager) {
		m.root = root
	}
}

// NewManager creates a workspace Manager.
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create materializes a fresh workspace directory for one attempt.
// The directory name embeds the attempt ID plus a random suffix from
// MkdirTemp, so workspaces are never reused across attempts.
func (m *Manager) Create(attemptID string) (*Handle, error) {
	pattern := fmt.Sprintf("execbox-%s-*", sanitize(attemptID))
	dir, err := os.MkdirTemp(m.root, pattern)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	if err := os.Chmod(dir, DirPermission); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("restrict workspace permissions: %w", err)
	}

	m.logger.Debug("workspace created",
		zap.String("attempt_id", attemptID),
		zap.String("dir", dir))

	return &Handle{logger: m.logger, attemptID: attemptID, dir: dir}, nil
}

// sanitize keeps workspace dir patterns free of path separators.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}

// Handle wraps the temporary directory exclusively owned by one attempt.
type Handle struct {
	logger    *zap.Logger
	attemptID string
	dir       string
	release   sync.Once
}

// Path returns the workspace directory.
func (h *Handle) Path() string {
	return h.dir
}

// WriteSource materializes a source file inside the workspace and
// returns its absolute path.
func (h *Handle) WriteSource(name string, content []byte) (string, error) {
	path := filepath.Join(h.dir, filepath.Base(name))
	if err := os.WriteFile(path, content, FilePermission); err != nil {
		return "", fmt.Errorf("write source file: %w", err)
	}
	return path, nil
}

// Join resolves a workspace-relative path, e.g. for build artifacts.
func (h *Handle) Join(name string) string {
	return filepath.Join(h.dir, filepath.Base(name))
}

// Release removes the workspace directory. It is idempotent and safe to
// call from every exit path.
func (h *Handle) Release() error {
	var err error
	h.release.Do(func() {
		err = os.RemoveAll(h.dir)
		if err != nil {
			h.logger.Warn("workspace cleanup failed",
				zap.String("attempt_id", h.attemptID),
				zap.String("dir", h.dir),
				zap.Error(err))
			return
		}
		h.logger.Debug("workspace released",
			zap.String("attempt_id", h.attemptID),
			zap.String("dir", h.dir))
	})
	return err
}
