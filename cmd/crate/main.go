package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/client"
	"github.com/pders01/crate/internal/config"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	cfg *config.Config

	flagConfig   string
	flagServer   string
	flagOffline  bool
	flagQuiet    bool
	flagLogLevel string
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "crate",
	Short: "Browse and curate a music album catalog",
	Long: `crate is a terminal client for an album catalog.

Run 'crate' with no arguments to browse the catalog served at server.base_url,
or pass --offline to work on the local library directly. 'crate serve' runs
the catalog service itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			color.NoColor = true
		}
		if cmd == versionCmd || cmd == configGenCmd {
			return nil
		}

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServer != "" {
			cfg.Server.BaseURL = flagServer
		}
		return setupLogging(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = debuglog.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crate %s\n", Version)
		fmt.Println("Album catalog")
		fmt.Println("github.com/pders01/crate")
	},
}

var configGenCmd = &cobra.Command{
	Use:   "generate-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configFile := defaultConfigPath()
		if len(args) > 0 {
			configFile = args[0]
		}
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			fail("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/crate/config.toml)")
	pf.StringVar(&flagServer, "server", "", "Catalog service URL (overrides server.base_url)")
	pf.BoolVar(&flagOffline, "offline", false, "Use the local library instead of the catalog service")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(
		versionCmd,
		configGenCmd,
		newServeCmd(),
		newScanCmd(),
		newStatsCmd(),
		newCoversCmd(),
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗"), err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crate", "config.toml")
}

// setupLogging starts the file logger. The TUI owns the terminal, so logs
// only ever go to the configured file; serve logs at info unless told
// otherwise.
func setupLogging(cmd *cobra.Command) error {
	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	parsed := debuglog.ParseLogLevel(level)
	if parsed == debuglog.LevelOff && flagLogLevel == "" && cmd.Name() == "serve" {
		parsed = debuglog.LevelInfo
	}
	if parsed == debuglog.LevelOff {
		return nil
	}
	return debuglog.SetupWithOptions(parsed, debuglog.Options{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

func runTUI() error {
	tui.ApplyTheme(cfg.UI.Colors)
	if !flagQuiet {
		tui.ShowBanner(Version)
	}

	svc, closeFn, err := catalogService()
	if err != nil {
		return err
	}
	defer closeFn()

	app := tui.NewApp(svc, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// catalogService returns the HTTP client, or the local library when running
// offline.
func catalogService() (catalog.Service, func(), error) {
	if flagOffline {
		stack, err := openLibrary(cfg)
		if err != nil {
			return nil, nil, err
		}
		return stack.lib, stack.Close, nil
	}
	c, err := client.New(cfg.Server)
	if err != nil {
		return nil, nil, err
	}
	debuglog.Infof("using catalog service at %s", c.BaseURL())
	return c, func() {}, nil
}

// ok prints a green success line.
func ok(format string, a ...any) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// fail prints a red error and exits 1.
func fail(format string, a ...any) {
	fmt.Fprintln(os.Stderr, color.RedString("✗"), fmt.Sprintf(format, a...))
	os.Exit(1)
}
