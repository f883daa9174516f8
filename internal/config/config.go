package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Library LibraryConfig `mapstructure:"library"`
	Listen  ListenConfig  `mapstructure:"listen"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
	Media   MediaConfig   `mapstructure:"media"`
	Keys    KeyConfig     `mapstructure:"keys"`
}

// ServerConfig describes the remote catalog the TUI talks to.
type ServerConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	PageSize    int           `mapstructure:"page_size"`
}

// LibraryConfig describes the on-disk library served by `crate serve`.
type LibraryConfig struct {
	MusicRoot      string        `mapstructure:"music_root"`
	DBPath         string        `mapstructure:"db_path"`
	DBTimeout      time.Duration `mapstructure:"db_timeout"`
	SearchIndex    string        `mapstructure:"search_index"`
	CoversDir      string        `mapstructure:"covers_dir"`
	Watch          bool          `mapstructure:"watch"`
	ScanDelay      time.Duration `mapstructure:"scan_delay"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	LookupTimeout  time.Duration `mapstructure:"lookup_timeout"`
	LookupURL      string        `mapstructure:"lookup_url"`
}

type ListenConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type MediaConfig struct {
	Darwin        ImageViewers `mapstructure:"darwin"`
	Linux         ImageViewers `mapstructure:"linux"`
	Windows       ImageViewers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type ImageViewers struct {
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	Search       string `mapstructure:"search"`
	Filter       string `mapstructure:"filter"`
	ToggleShared string `mapstructure:"toggle_shared"`
	Cover        string `mapstructure:"cover"`
	OpenCover    string `mapstructure:"open_cover"`
	Rescan       string `mapstructure:"rescan"`
	Refresh      string `mapstructure:"refresh"`
	NextPage     string `mapstructure:"next_page"`
	PrevPage     string `mapstructure:"prev_page"`
	Back         string `mapstructure:"back"`
	Help         string `mapstructure:"help"`
}

const (
	defaultAddr           = "0.0.0.0:5001"
	defaultMaxUploadBytes = 16 << 20
	envPrefix             = "CRATE"
)

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".crate")

	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://localhost:5001",
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "crate/1.0 (https://github.com/pders01/crate)",
			PageSize:    100,
		},
		Library: LibraryConfig{
			MusicRoot:      filepath.Join(homeDir, "Music"),
			DBPath:         filepath.Join(dataDir, "albums.db"),
			DBTimeout:      1 * time.Second,
			SearchIndex:    filepath.Join(dataDir, "index.bleve"),
			CoversDir:      filepath.Join(dataDir, "covers"),
			Watch:          false,
			ScanDelay:      5 * time.Second,
			MaxUploadBytes: defaultMaxUploadBytes,
			LookupTimeout:  10 * time.Second,
			LookupURL:      "https://itunes.apple.com/search",
		},
		Listen: ListenConfig{
			Addr: defaultAddr,
		},
		Log: LogConfig{
			Level:      "off",
			File:       filepath.Join(dataDir, "crate.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
		},
		Media: MediaConfig{
			Darwin:        ImageViewers{Image: []string{"qlmanage", "open"}},
			Linux:         ImageViewers{Image: []string{"sxiv", "feh", "eog", "xdg-open"}},
			Windows:       ImageViewers{Image: []string{"start"}},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:         "q",
				Search:       "s",
				Filter:       "f",
				ToggleShared: "t",
				Cover:        "u",
				OpenCover:    "o",
				Rescan:       "r",
				Refresh:      "l",
				NextPage:     "n",
				PrevPage:     "p",
				Back:         "esc",
				Help:         "?",
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// setDefaults registers scalar defaults key by key so that environment
// overrides resolve for them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.base_url", cfg.Server.BaseURL)
	v.SetDefault("server.http_timeout", cfg.Server.HTTPTimeout)
	v.SetDefault("server.user_agent", cfg.Server.UserAgent)
	v.SetDefault("server.page_size", cfg.Server.PageSize)

	v.SetDefault("library.music_root", cfg.Library.MusicRoot)
	v.SetDefault("library.db_path", cfg.Library.DBPath)
	v.SetDefault("library.db_timeout", cfg.Library.DBTimeout)
	v.SetDefault("library.search_index", cfg.Library.SearchIndex)
	v.SetDefault("library.covers_dir", cfg.Library.CoversDir)
	v.SetDefault("library.watch", cfg.Library.Watch)
	v.SetDefault("library.scan_delay", cfg.Library.ScanDelay)
	v.SetDefault("library.max_upload_bytes", cfg.Library.MaxUploadBytes)
	v.SetDefault("library.lookup_timeout", cfg.Library.LookupTimeout)
	v.SetDefault("library.lookup_url", cfg.Library.LookupURL)

	v.SetDefault("listen.addr", cfg.Listen.Addr)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)

	v.SetDefault("ui", cfg.UI)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
}

func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "crate")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names understood by earlier deployments of the library service.
	_ = v.BindEnv("library.music_root", envPrefix+"_LIBRARY_MUSIC_ROOT", "MUSIC_ROOT")
	_ = v.BindEnv("library.db_path", envPrefix+"_LIBRARY_DB_PATH", "DB_PATH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyLegacyListen(&config)
	if config.Server.PageSize <= 0 {
		config.Server.PageSize = 100
	}
	if config.Library.MaxUploadBytes <= 0 {
		config.Library.MaxUploadBytes = defaultMaxUploadBytes
	}

	// Expand paths after loading
	expandPaths(&config)

	return &config, nil
}

// loadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// applyLegacyListen folds HOST and PORT into listen.addr.
func applyLegacyListen(cfg *Config) {
	host, port := os.Getenv("HOST"), os.Getenv("PORT")
	if host == "" && port == "" {
		return
	}
	curHost, curPort, err := net.SplitHostPort(cfg.Listen.Addr)
	if err != nil {
		curHost, curPort, _ = net.SplitHostPort(defaultAddr)
	}
	if host == "" {
		host = curHost
	}
	if port == "" {
		port = curPort
	}
	cfg.Listen.Addr = net.JoinHostPort(host, port)
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	// Expand tilde
	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	// Convert to absolute path if not already absolute
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// expandPaths expands all paths in the config
func expandPaths(cfg *Config) {
	cfg.Library.MusicRoot = expandPath(cfg.Library.MusicRoot)
	cfg.Library.DBPath = expandPath(cfg.Library.DBPath)
	cfg.Library.SearchIndex = expandPath(cfg.Library.SearchIndex)
	cfg.Library.CoversDir = expandPath(cfg.Library.CoversDir)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Convert durations to strings for TOML readability
	serverCfg := map[string]interface{}{
		"base_url":     config.Server.BaseURL,
		"http_timeout": config.Server.HTTPTimeout.String(),
		"user_agent":   config.Server.UserAgent,
		"page_size":    config.Server.PageSize,
	}

	libraryCfg := map[string]interface{}{
		"music_root":       config.Library.MusicRoot,
		"db_path":          config.Library.DBPath,
		"db_timeout":       config.Library.DBTimeout.String(),
		"search_index":     config.Library.SearchIndex,
		"covers_dir":       config.Library.CoversDir,
		"watch":            config.Library.Watch,
		"scan_delay":       config.Library.ScanDelay.String(),
		"max_upload_bytes": config.Library.MaxUploadBytes,
		"lookup_timeout":   config.Library.LookupTimeout.String(),
		"lookup_url":       config.Library.LookupURL,
	}

	v.Set("server", serverCfg)
	v.Set("library", libraryCfg)
	v.Set("listen", map[string]interface{}{"addr": config.Listen.Addr})
	v.Set("log", map[string]interface{}{
		"level":        config.Log.Level,
		"file":         config.Log.File,
		"max_size_mb":  config.Log.MaxSizeMB,
		"max_backups":  config.Log.MaxBackups,
		"max_age_days": config.Log.MaxAgeDays,
	})
	v.Set("ui", config.UI)
	v.Set("media", config.Media)
	v.Set("keys", config.Keys)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
