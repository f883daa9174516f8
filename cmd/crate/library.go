package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pders01/crate/internal/artwork"
	"github.com/pders01/crate/internal/catalog"
	"github.com/pders01/crate/internal/config"
	"github.com/pders01/crate/internal/debuglog"
	"github.com/pders01/crate/internal/library"
	"github.com/pders01/crate/internal/search"
	"github.com/pders01/crate/internal/server"
	"github.com/pders01/crate/internal/storage"
	"github.com/pders01/crate/internal/validation"
	"github.com/pders01/crate/internal/watcher"
)

// libraryStack is the local catalog: album store, search index and the
// service on top of them.
type libraryStack struct {
	store *storage.Store
	index *search.BleveEngine
	lib   *library.Service
}

func (s *libraryStack) Close() {
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			debuglog.Warnf("closing search index: %v", err)
		}
	}
	if err := s.store.Close(); err != nil {
		debuglog.Warnf("closing store: %v", err)
	}
}

func openLibrary(cfg *config.Config) (*libraryStack, error) {
	layout, err := validation.NewLayout(validation.OpenPolicy())
	if err != nil {
		return nil, err
	}

	dbPath, err := layout.Database(cfg.Library.DBPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(dbPath, cfg.Library.DBTimeout)
	if err != nil {
		return nil, err
	}
	stack := &libraryStack{store: store}

	var searcher search.Searcher
	if cfg.Library.SearchIndex != "" {
		if idx, err := openIndex(layout, cfg.Library.SearchIndex, store); err != nil {
			warn("Search index unavailable, using plain matching: %v", err)
		} else {
			stack.index = idx
			searcher = idx
		}
	}

	coversDir, err := layout.Covers(cfg.Library.CoversDir)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("covers directory: %w", err)
	}

	registry := artwork.NewRegistry(cfg.Library.LookupTimeout)
	registry.SetUserAgent(cfg.Server.UserAgent)
	registry.SetMaxBytes(cfg.Library.MaxUploadBytes)
	registry.Register(artwork.NewITunesProvider(cfg.Library.LookupURL))

	stack.lib = library.NewService(store, searcher, registry, library.Options{
		MusicRoot:      cfg.Library.MusicRoot,
		CoversDir:      coversDir,
		MaxUploadBytes: cfg.Library.MaxUploadBytes,
	})
	return stack, nil
}

func openIndex(layout *validation.Layout, indexPath string, store *storage.Store) (*search.BleveEngine, error) {
	validated, err := layout.Index(indexPath)
	if err != nil {
		return nil, err
	}
	albums, err := store.GetAllAlbums()
	if err != nil {
		return nil, err
	}
	engine, err := search.NewBleveEngine(validated, albums)
	if err != nil {
		return nil, err
	}
	if n, err := engine.DocCount(); err == nil {
		debuglog.Infof("search index %s holds %d albums", validated, n)
	}
	return engine, nil
}

func newServeCmd() *cobra.Command {
	var (
		addr      string
		musicRoot string
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the album catalog over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Listen.Addr = addr
			}
			if musicRoot != "" {
				cfg.Library.MusicRoot = musicRoot
			}
			if cmd.Flags().Changed("watch") {
				cfg.Library.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stack, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer stack.Close()

			summary, err := stack.lib.Rescan(ctx)
			switch {
			case errors.Is(err, library.ErrMissingRoot):
				warn("Music root %s does not exist yet", cfg.Library.MusicRoot)
			case err != nil:
				warn("Initial scan failed: %v", err)
			default:
				ok("Scanned %s: added %d, skipped %d", cfg.Library.MusicRoot, summary.Added, summary.Skipped)
			}

			if cfg.Library.Watch {
				w, err := watcher.New(cfg.Library.MusicRoot, cfg.Library.ScanDelay, stack.lib,
					watcher.WithScanHook(func(s catalog.RescanSummary, err error) {
						if err != nil {
							warn("Rescan failed: %v", err)
							return
						}
						if s.Added > 0 {
							ok("New albums found: %d", s.Added)
						}
					}))
				if err != nil {
					warn("Not watching %s: %v", cfg.Library.MusicRoot, err)
				} else {
					go func() {
						if err := w.Run(ctx); err != nil {
							debuglog.Errorf("watcher stopped: %v", err)
						}
					}()
					ok("Watching %s for new albums", cfg.Library.MusicRoot)
				}
			}

			srv := server.New(stack.lib, cfg.Library.MaxUploadBytes)
			ok("Serving catalog on http://%s", cfg.Listen.Addr)
			return srv.ListenAndServe(ctx, cfg.Listen.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen.addr)")
	cmd.Flags().StringVar(&musicRoot, "music-root", "", "Music library root (overrides library.music_root)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rescan automatically when album folders appear")
	return cmd
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan the music root for new albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer stack.Close()

			summary, err := stack.lib.Rescan(cmd.Context())
			if err != nil {
				return err
			}
			ok("Added %d albums, skipped %d", summary.Added, summary.Skipped)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := catalogService()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			if cfg.Server.HTTPTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Server.HTTPTimeout)
				defer cancel()
			}
			stats, err := svc.FetchStats(ctx)
			if err != nil {
				return fmt.Errorf("fetching stats: %w", err)
			}
			printStats(stats)
			return nil
		},
	}
}

func printStats(s catalog.Stats) {
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("%s %d\n", label("Albums:        "), s.Total)
	fmt.Printf("%s %d\n", label("Artists:       "), s.DistinctAuthors)
	fmt.Printf("%s %d\n", label("Shared:        "), s.Shared)
	fmt.Printf("%s %d\n", label("Not shared:    "), s.NotShared)
	fmt.Printf("%s %d\n", label("With covers:   "), s.WithCovers)
	fmt.Printf("%s %d\n", label("Without covers:"), s.WithoutCovers)
}

func newCoversCmd() *cobra.Command {
	var (
		limit int
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Look up artwork for albums without a cover",
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := openLibrary(cfg)
			if err != nil {
				return err
			}
			defer stack.Close()

			found, failed, err := stack.lib.FetchMissingCovers(cmd.Context(), limit, delay, func(p library.CoverProgress) {
				name := p.Album.Artist + " - " + p.Album.Title
				if p.Err != nil {
					warn("%s: %s", name, catalog.Message(p.Err))
					return
				}
				ok("%s", name)
			})
			if err != nil {
				return err
			}
			fmt.Printf("Found %d covers, %d without artwork\n", found, failed)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of albums to look up (0 for all)")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "Pause between lookups")
	return cmd
}
