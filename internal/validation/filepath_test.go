package validation

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestPolicies(t *testing.T) {
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".crate"); !slices.Contains(DataPolicy().Roots, want) {
		t.Errorf("DataPolicy roots = %v, want to include %s", DataPolicy().Roots, want)
	}
	if len(OpenPolicy().Roots) != 0 {
		t.Error("open policy should allow all directories")
	}
}

func TestPolicyClean(t *testing.T) {
	p := OpenPolicy()
	tmp := t.TempDir()
	home, _ := os.UserHomeDir()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"absolute", filepath.Join(tmp, "a.jpg"), filepath.Join(tmp, "a.jpg"), false},
		{"home expansion", "~/Pictures/front.png", filepath.Join(home, "Pictures", "front.png"), false},
		{"bare tilde", "~", home, false},
		{"trailing slash cleaned", tmp + "/", tmp, false},
		{"empty", "", "", true},
		{"null byte", "/tmp/a\x00.jpg", "", true},
		{"control char", "/tmp/a\x01.jpg", "", true},
		{"traversal", "/tmp/../etc/passwd", "", true},
		{"trailing parent", "/tmp/covers/..", "", true},
		{"other user home", "~root/file", "", true},
		{"too long", "/" + strings.Repeat("a", 5000), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Clean(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Clean(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Clean(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPolicyRoots(t *testing.T) {
	base := t.TempDir()
	p := &PathPolicy{Roots: []string{base}, ExpandHome: true, MaxLen: maxPathLen}

	if _, err := p.Clean(filepath.Join(base, "albums.db")); err != nil {
		t.Errorf("path inside root rejected: %v", err)
	}
	if _, err := p.Clean(base); err != nil {
		t.Errorf("root itself rejected: %v", err)
	}
	_, err := p.Clean(base + "-sibling/albums.db")
	if !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("sibling with shared prefix: err = %v, want ErrOutsideRoot", err)
	}
}

func TestPolicyDir(t *testing.T) {
	p := OpenPolicy()
	tmp := t.TempDir()

	dir := filepath.Join(tmp, "covers")
	got, err := p.Dir(dir, true)
	if err != nil {
		t.Fatalf("Dir error = %v", err)
	}
	if info, statErr := os.Stat(got); statErr != nil || !info.IsDir() {
		t.Errorf("directory %s was not created", got)
	}

	missing := filepath.Join(tmp, "missing")
	if _, err := p.Dir(missing, false); err != nil {
		t.Errorf("missing directory without create should pass, got %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("Dir without create made %s", missing)
	}

	file := filepath.Join(tmp, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Dir(file, false); err == nil {
		t.Error("file passed as directory should be rejected")
	}
}

func TestPolicyFile(t *testing.T) {
	p := OpenPolicy()
	tmp := t.TempDir()

	if _, err := p.File(filepath.Join(tmp, "new.db")); err != nil {
		t.Errorf("nonexistent file path should be valid: %v", err)
	}
	if _, err := p.File(tmp); err == nil {
		t.Error("directory passed as file should be rejected")
	}
}

func TestIsPathSafe(t *testing.T) {
	tests := map[string]bool{
		"/music/Artist/Album":            true,
		"relative/cover.jpg":             true,
		"/music/Artist..Live/cover.jpg":  true,
		"../etc/passwd":                  false,
		"..\\windows":                    false,
		"..":                             false,
		"/music/..":                      false,
		"a\x00b":                         false,
		"/" + strings.Repeat("x", 4097): false,
	}
	for path, want := range tests {
		if got := IsPathSafe(path); got != want {
			t.Errorf("IsPathSafe(%q) = %v, want %v", path, got, want)
		}
	}
}
