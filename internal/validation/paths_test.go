package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayoutDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	l, err := NewLayout(nil)
	if err != nil {
		t.Fatalf("NewLayout error = %v", err)
	}

	db, err := l.Database("")
	if err != nil {
		t.Fatalf("Database error = %v", err)
	}
	if want := filepath.Join(home, ".crate", "albums.db"); db != want {
		t.Errorf("Database = %s, want %s", db, want)
	}
	if info, err := os.Stat(filepath.Dir(db)); err != nil || !info.IsDir() {
		t.Errorf("data directory was not created")
	}

	idx, err := l.Index("")
	if err != nil {
		t.Fatalf("Index error = %v", err)
	}
	if want := filepath.Join(home, ".crate", "index.bleve"); idx != want {
		t.Errorf("Index = %s, want %s", idx, want)
	}
	if _, err := os.Stat(idx); !os.IsNotExist(err) {
		t.Errorf("Index should not create %s", idx)
	}

	covers, err := l.Covers("")
	if err != nil {
		t.Fatalf("Covers error = %v", err)
	}
	if info, err := os.Stat(covers); err != nil || !info.IsDir() {
		t.Errorf("expected %s to exist as a directory", covers)
	}
}

func TestLayoutDataPolicyRejectsOutsidePaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	l, err := NewLayout(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Database("/etc/albums.db"); err == nil {
		t.Error("data policy should reject paths outside its directories")
	}
}

func TestLayoutOpenPolicy(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	l, err := NewLayout(OpenPolicy())
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "covers", "nested")

	got, err := l.Covers(dir)
	if err != nil {
		t.Fatalf("Covers error = %v", err)
	}
	if got != dir {
		t.Errorf("Covers = %s, want %s", got, dir)
	}
	if _, err := l.Covers("../escape"); err == nil {
		t.Error("traversal should be rejected")
	}
}
