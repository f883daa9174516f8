package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxPathLen = 4096

var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrUnsafePath  = errors.New("path contains invalid characters or traversal")
	ErrOutsideRoot = errors.New("path is outside the allowed directories")
)

// PathPolicy decides which local paths crate may read from or write to.
// An empty Roots list allows any location.
type PathPolicy struct {
	Roots      []string
	ExpandHome bool
	MaxLen     int
}

// DataPolicy confines paths to crate's own data and config directories.
func DataPolicy() *PathPolicy {
	home, _ := os.UserHomeDir()
	return &PathPolicy{
		Roots: []string{
			filepath.Join(home, ".crate"),
			filepath.Join(home, ".config", "crate"),
			os.TempDir(),
		},
		ExpandHome: true,
		MaxLen:     maxPathLen,
	}
}

// OpenPolicy accepts any location, for user-supplied library and cover paths.
func OpenPolicy() *PathPolicy {
	return &PathPolicy{ExpandHome: true, MaxLen: maxPathLen}
}

// Clean returns path as an absolute, cleaned path, or an error when it
// breaks the policy.
func (p *PathPolicy) Clean(path string) (string, error) {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return "", ErrEmptyPath
	case p.MaxLen > 0 && len(path) > p.MaxLen:
		return "", fmt.Errorf("path too long (max %d characters)", p.MaxLen)
	case !IsPathSafe(path):
		return "", ErrUnsafePath
	case strings.ContainsFunc(path, func(r rune) bool { return r < 32 && r != '\t' }):
		return "", fmt.Errorf("path contains control characters")
	}

	if rest, ok := strings.CutPrefix(path, "~"); ok {
		if !p.ExpandHome || (rest != "" && !strings.HasPrefix(rest, "/")) {
			return "", fmt.Errorf("cannot expand %q", path)
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	if !p.allows(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, abs)
	}
	return abs, nil
}

func (p *PathPolicy) allows(abs string) bool {
	if len(p.Roots) == 0 {
		return true
	}
	for _, root := range p.Roots {
		if within(root, abs) {
			return true
		}
	}
	return false
}

// within reports whether path is root or lies beneath it.
func within(root, path string) bool {
	root, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Dir cleans path and checks that it is a directory. Missing directories
// are created when create is set and left alone otherwise.
func (p *PathPolicy) Dir(path string, create bool) (string, error) {
	abs, err := p.Clean(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		if create {
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return "", fmt.Errorf("creating %s: %w", abs, err)
			}
		}
		return abs, nil
	}
	if err != nil {
		return "", fmt.Errorf("checking directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// File cleans path and checks that it does not name a directory.
func (p *PathPolicy) File(path string) (string, error) {
	abs, err := p.Clean(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("is a directory: %s", abs)
	}
	return abs, nil
}

// IsPathSafe rejects NUL bytes, parent references and overlong paths.
func IsPathSafe(path string) bool {
	if len(path) > maxPathLen || strings.ContainsRune(path, 0) {
		return false
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}
