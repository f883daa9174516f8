// Package media opens album covers in the system image viewer.
package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/crate/internal/config"
)

// ErrNoTarget is returned when there is nothing to open.
var ErrNoTarget = errors.New("no cover to open")

type Launcher struct {
	viewer        string
	defaultOpener string
	registry      *ViewerRegistry
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewViewerRegistry()
	if err != nil {
		registry = &ViewerRegistry{
			viewers:   make(map[string]ViewerDefinition),
			platforms: make(map[string]PlatformConfig),
			goos:      runtime.GOOS,
		}
	}

	l := &Launcher{
		defaultOpener: cfg.Media.DefaultOpener,
		registry:      registry,
		start:         startDetached,
	}
	if l.defaultOpener == "" {
		l.defaultOpener = registry.DefaultOpener()
	}

	var viewers config.ImageViewers
	switch runtime.GOOS {
	case "darwin":
		viewers = cfg.Media.Darwin
	case "linux":
		viewers = cfg.Media.Linux
	case "windows":
		viewers = cfg.Media.Windows
	default:
		viewers = cfg.Media.Darwin
	}
	l.viewer = findCommand(viewers.Image...)
	if l.viewer == "" {
		l.viewer = l.defaultOpener
	}
	return l
}

// Viewer is the command covers are opened with.
func (l *Launcher) Viewer() string { return l.viewer }

// Open launches the viewer on a cover URL or file path without waiting for
// it to exit.
func (l *Launcher) Open(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrNoTarget
	}
	if l.viewer == "" {
		return fmt.Errorf("no image viewer found")
	}

	cmd, err := l.registry.Command(l.viewer, target)
	if err != nil {
		cmd = exec.Command(l.viewer, target)
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.viewer, err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
