package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves where the library keeps its database, search index and
// stored covers. Empty arguments fall back to entries under Home.
type Layout struct {
	Home   string
	policy *PathPolicy
}

// NewLayout returns a layout rooted at ~/.crate. Paths are checked against
// policy; a nil policy confines them to crate's own directories.
func NewLayout(policy *PathPolicy) (*Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	if policy == nil {
		policy = DataPolicy()
	}
	return &Layout{Home: filepath.Join(home, ".crate"), policy: policy}, nil
}

func (l *Layout) orDefault(path, name string) string {
	if path == "" {
		return filepath.Join(l.Home, name)
	}
	return path
}

// Database returns the bbolt file path and makes sure its parent exists.
func (l *Layout) Database(path string) (string, error) {
	db, err := l.policy.File(l.orDefault(path, "albums.db"))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(db), 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return db, nil
}

// Index returns the bleve index path. The index is a directory that bleve
// creates itself, so it is not created here.
func (l *Layout) Index(path string) (string, error) {
	return l.policy.Dir(l.orDefault(path, "index.bleve"), false)
}

// Covers returns the directory for stored covers, creating it if needed.
func (l *Layout) Covers(path string) (string, error) {
	return l.policy.Dir(l.orDefault(path, "covers"), true)
}
