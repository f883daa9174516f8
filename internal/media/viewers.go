package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

//go:embed viewers.toml
var viewersTOML []byte

// ViewerDefinition describes how to invoke one image viewer.
type ViewerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Args        []string `toml:"args,omitempty"`
	ArgsDarwin  []string `toml:"args_darwin,omitempty"`
	ArgsLinux   []string `toml:"args_linux,omitempty"`
	ArgsWindows []string `toml:"args_windows,omitempty"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type ViewersConfig struct {
	Viewers   map[string]ViewerDefinition `toml:"viewers"`
	Platforms map[string]PlatformConfig   `toml:"platforms"`
}

// ViewerRegistry holds the known viewer definitions.
type ViewerRegistry struct {
	viewers   map[string]ViewerDefinition
	platforms map[string]PlatformConfig
	goos      string
}

// NewViewerRegistry loads the built-in definitions and merges any user file
// found in the config directory or the working directory.
func NewViewerRegistry() (*ViewerRegistry, error) {
	r, err := parseViewers(viewersTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing viewers.toml: %w", err)
	}
	r.loadUserConfig()
	return r, nil
}

func parseViewers(data []byte) (*ViewerRegistry, error) {
	var cfg ViewersConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Viewers == nil {
		cfg.Viewers = make(map[string]ViewerDefinition)
	}
	if cfg.Platforms == nil {
		cfg.Platforms = make(map[string]PlatformConfig)
	}
	return &ViewerRegistry{viewers: cfg.Viewers, platforms: cfg.Platforms, goos: runtime.GOOS}, nil
}

func (r *ViewerRegistry) loadUserConfig() {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "crate", "viewers.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "crate", "viewers.toml"))
	}
	paths = append(paths, "viewers.toml")

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		r.merge(data)
	}
}

// merge overlays user definitions; a file that does not parse is ignored.
func (r *ViewerRegistry) merge(data []byte) {
	var user ViewersConfig
	if err := toml.Unmarshal(data, &user); err != nil {
		return
	}
	for name, def := range user.Viewers {
		r.viewers[name] = def
	}
	for name, p := range user.Platforms {
		r.platforms[name] = p
	}
}

// Command builds the invocation of viewer for target. Unknown viewers are
// run with the target as their only argument.
func (r *ViewerRegistry) Command(viewer, target string) (*exec.Cmd, error) {
	def, ok := r.viewers[viewer]
	if !ok {
		return exec.Command(viewer, target), nil
	}
	if !slices.Contains(def.Platforms, r.goos) {
		return nil, fmt.Errorf("%s not supported on %s", viewer, r.goos)
	}

	args := append(slices.Clone(r.args(def)), target)
	if r.goos == "windows" && viewer == "start" {
		return exec.Command("cmd", args...), nil
	}
	return exec.Command(viewer, args...), nil
}

func (r *ViewerRegistry) args(def ViewerDefinition) []string {
	switch r.goos {
	case "darwin":
		if len(def.ArgsDarwin) > 0 {
			return def.ArgsDarwin
		}
	case "linux":
		if len(def.ArgsLinux) > 0 {
			return def.ArgsLinux
		}
	case "windows":
		if len(def.ArgsWindows) > 0 {
			return def.ArgsWindows
		}
	}
	return def.Args
}

// DefaultOpener is the platform's generic "open this" command.
func (r *ViewerRegistry) DefaultOpener() string {
	if p, ok := r.platforms[r.goos]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	if p, ok := r.platforms["fallback"]; ok && p.DefaultOpener != "" {
		return p.DefaultOpener
	}
	return "open"
}

func (r *ViewerRegistry) Has(viewer string) bool {
	_, ok := r.viewers[viewer]
	return ok
}
