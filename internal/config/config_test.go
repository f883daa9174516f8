package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.HTTPTimeout != 30*time.Second {
		t.Errorf("Server.HTTPTimeout = %v, want 30s", cfg.Server.HTTPTimeout)
	}
	if cfg.Server.PageSize != 100 {
		t.Errorf("Server.PageSize = %d, want 100", cfg.Server.PageSize)
	}
	if cfg.Server.UserAgent == "" {
		t.Error("Server.UserAgent should not be empty")
	}
	if cfg.Library.MaxUploadBytes != 16*1024*1024 {
		t.Errorf("Library.MaxUploadBytes = %d, want 16MiB", cfg.Library.MaxUploadBytes)
	}
	if cfg.Listen.Addr != "0.0.0.0:5001" {
		t.Errorf("Listen.Addr = %s, want 0.0.0.0:5001", cfg.Listen.Addr)
	}
	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %s, want off", cfg.Log.Level)
	}
	if cfg.Media.DefaultOpener == "" {
		t.Error("Media.DefaultOpener should not be empty")
	}
	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.ToggleShared != "t" {
		t.Errorf("Keys.Bindings.ToggleShared = %s, want 't'", cfg.Keys.Bindings.ToggleShared)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.Library.ScanDelay != 5*time.Second {
		t.Errorf("Library.ScanDelay = %v, want 5s", cfg.Library.ScanDelay)
	}
	if !filepath.IsAbs(cfg.Library.DBPath) {
		t.Errorf("Library.DBPath = %s, want absolute path", cfg.Library.DBPath)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[server]
base_url = "http://music.local:8080"
http_timeout = "60s"
user_agent = "test-agent"

[library]
music_root = "/srv/music"
scan_delay = "30s"
watch = true

[listen]
addr = "127.0.0.1:9000"

[ui.colors]
primary = "#FF0000"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "http://music.local:8080" {
		t.Errorf("Server.BaseURL = %s", cfg.Server.BaseURL)
	}
	if cfg.Server.HTTPTimeout != 60*time.Second {
		t.Errorf("Server.HTTPTimeout = %v, want 60s", cfg.Server.HTTPTimeout)
	}
	if cfg.Server.UserAgent != "test-agent" {
		t.Errorf("Server.UserAgent = %s, want 'test-agent'", cfg.Server.UserAgent)
	}
	if cfg.Library.MusicRoot != "/srv/music" {
		t.Errorf("Library.MusicRoot = %s, want '/srv/music'", cfg.Library.MusicRoot)
	}
	if cfg.Library.ScanDelay != 30*time.Second {
		t.Errorf("Library.ScanDelay = %v, want 30s", cfg.Library.ScanDelay)
	}
	if !cfg.Library.Watch {
		t.Error("Library.Watch = false, want true")
	}
	if cfg.Listen.Addr != "127.0.0.1:9000" {
		t.Errorf("Listen.Addr = %s", cfg.Listen.Addr)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)
	t.Setenv("CRATE_SERVER_BASE_URL", "http://env.example:1234")
	t.Setenv("MUSIC_ROOT", "/mnt/albums")
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.BaseURL != "http://env.example:1234" {
		t.Errorf("Server.BaseURL = %s", cfg.Server.BaseURL)
	}
	if cfg.Library.MusicRoot != "/mnt/albums" {
		t.Errorf("Library.MusicRoot = %s, want /mnt/albums", cfg.Library.MusicRoot)
	}
	if cfg.Listen.Addr != "0.0.0.0:8081" {
		t.Errorf("Listen.Addr = %s, want 0.0.0.0:8081", cfg.Listen.Addr)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)
	// Registered so t.Setenv restores the variable after godotenv sets it.
	t.Setenv("DB_PATH", "")
	os.Unsetenv("DB_PATH")

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("DB_PATH=/var/lib/crate/albums.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Library.DBPath != "/var/lib/crate/albums.db" {
		t.Errorf("Library.DBPath = %s, want value from .env", cfg.Library.DBPath)
	}
}

func TestApplyLegacyListen(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "")

	cfg := defaultConfig()
	applyLegacyListen(cfg)
	if cfg.Listen.Addr != "127.0.0.1:5001" {
		t.Errorf("Listen.Addr = %s, want 127.0.0.1:5001", cfg.Listen.Addr)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cfg := defaultConfig()
	cfg.Server.BaseURL = "http://saved.example"
	cfg.Server.UserAgent = "test-save-agent"
	cfg.Library.DBPath = "/test/path.db"
	cfg.Library.ScanDelay = 42 * time.Second
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if err := Save(cfg, savePath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(savePath); os.IsNotExist(err) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Library.DBPath != cfg.Library.DBPath {
		t.Errorf("Loaded Library.DBPath = %s, want %s", loaded.Library.DBPath, cfg.Library.DBPath)
	}
	if loaded.Library.ScanDelay != cfg.Library.ScanDelay {
		t.Errorf("Loaded Library.ScanDelay = %v, want %v", loaded.Library.ScanDelay, cfg.Library.ScanDelay)
	}
	if loaded.Server.UserAgent != cfg.Server.UserAgent {
		t.Errorf("Loaded Server.UserAgent = %s, want %s", loaded.Server.UserAgent, cfg.Server.UserAgent)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configPath := filepath.Join(tmpDir, "generated.toml")
	if err := GenerateDefaultConfig(configPath); err != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}
	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Listen.Addr != "0.0.0.0:5001" {
		t.Errorf("Generated config has Listen.Addr = %s", cfg.Listen.Addr)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}
	if cfg.Library.DBPath != ":memory:" {
		t.Errorf("TestConfig Library.DBPath = %s, want ':memory:'", cfg.Library.DBPath)
	}
	if cfg.Server.UserAgent != "crate-test/1.0" {
		t.Errorf("TestConfig Server.UserAgent = %s, want 'crate-test/1.0'", cfg.Server.UserAgent)
	}
}
