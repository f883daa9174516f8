package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/crate/internal/config"
)

// captureStdout runs fn and returns what it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-outC
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() { versionCmd.Run(versionCmd, nil) })

	if !strings.Contains(out, "crate dev") {
		t.Errorf("Expected version output to contain 'crate dev', got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/crate") {
		t.Errorf("Expected version output to contain module path, got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configFile := filepath.Join(tmpDir, ".config", "crate", "config.toml")

	out := captureStdout(t, func() { configGenCmd.Run(configGenCmd, nil) })

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(out, "Generated default configuration at:") {
		t.Errorf("Expected output to contain 'Generated default configuration at:', got: %s", out)
	}
}

func TestGenerateConfigExplicitPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "custom.toml")
	captureStdout(t, func() { configGenCmd.Run(configGenCmd, []string{target}) })

	_, err := os.Stat(target)
	assert.NoError(t, err)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "generate-config", "serve", "scan", "stats", "covers"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	for _, flag := range []string{"config", "server", "offline", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
	assert.NotNil(t, rootCmd.Flags().Lookup("quiet"))
}

func testLibraryConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	c := config.TestConfig()
	c.Library.MusicRoot = filepath.Join(dir, "music")
	c.Library.DBPath = filepath.Join(dir, "albums.db")
	c.Library.SearchIndex = filepath.Join(dir, "index.bleve")
	c.Library.CoversDir = filepath.Join(dir, "covers")
	return c
}

func TestOpenLibraryScan(t *testing.T) {
	c := testLibraryConfig(t)
	album := filepath.Join(c.Library.MusicRoot, "Jazz", "Miles Davis", "Kind of Blue")
	require.NoError(t, os.MkdirAll(album, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(album, "01 So What.flac"), []byte("x"), 0o644))

	stack, err := openLibrary(c)
	require.NoError(t, err)
	defer stack.Close()
	require.NotNil(t, stack.index)

	summary, err := stack.lib.Rescan(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)

	stats, err := stack.lib.FetchStats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.DirExists(t, c.Library.CoversDir)
}

func TestOpenLibraryWithoutIndex(t *testing.T) {
	c := testLibraryConfig(t)
	c.Library.SearchIndex = ""

	stack, err := openLibrary(c)
	require.NoError(t, err)
	defer stack.Close()
	assert.Nil(t, stack.index)
}
