package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/highlight/internal/adapters/driven/identity/page"
	"github.com/custodia-labs/highlight/internal/adapters/driven/scheduler"
	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/core/services"
	"github.com/custodia-labs/highlight/internal/logger"
)

var watchOut string

var watchCmd = &cobra.Command{
	Use:   "watch <file.html>",
	Short: "Keep an annotated copy of a page up to date",
	Long: `Load a page and keep an annotated copy of it in --out.

Whenever the input file changes, its new body replaces the live page as a
client-side navigation would, and the page is annotated again. Edits to the
configuration (through 'highlight config' or by hand) are picked up without
a restart. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "annotated output file (required)")
	_ = watchCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if fileStore != nil {
		if err := fileStore.Watch(); err != nil {
			logger.Warn("Configuration edits will not be picked up: %v", err)
		}
	}

	regions, err := contentRegions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s, writing %s\n", args[0], watchOut)
	return watchPage(ctx, watchOptions{
		Input:    args[0],
		Output:   watchOut,
		Store:    store,
		Regions:  regions,
		Interval: frameInterval,
	})
}

// watchOptions configures watchPage.
type watchOptions struct {
	Input    string
	Output   string
	Store    driven.ConfigStore
	Regions  []annotator.Region
	Interval time.Duration
}

// watchPage runs a coordinator over Input until ctx is cancelled. Every
// scan rewrites Output; every change to Input is swapped into the live
// document and reported as a navigation.
func watchPage(ctx context.Context, opts watchOptions) error {
	loader := source.NewLoader()
	p, err := loader.Load(ctx, opts.Input)
	if err != nil {
		return err
	}
	doc := p.Doc

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(opts.Input)); err != nil {
		return fmt.Errorf("watching %s: %w", opts.Input, err)
	}

	loop := scheduler.NewLoop(opts.Interval)
	coordinator := services.NewCoordinator(doc, opts.Store, loop, services.CoordinatorOptions{
		Regions:  opts.Regions,
		Resolver: page.NewResolver(doc),
		OnScan: func(report domain.ScanReport) {
			if err := writePage(opts.Output, doc); err != nil {
				logger.Error("%v", err)
				return
			}
			logger.Info("Wrote %s: %d marker(s) (%v)", opts.Output, report.Markers, report.Triggers)
		},
	})
	if err := coordinator.Start(ctx); err != nil {
		return err
	}

	loop.Start()
	defer func() {
		coordinator.Stop()
		loop.Wait(time.Second)
		loop.Stop()
	}()

	input := filepath.Clean(opts.Input)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			next, err := loader.Load(ctx, opts.Input)
			if err != nil {
				// Editors often truncate before writing; the next event retries.
				logger.Debug("reloading %s: %v", opts.Input, err)
				continue
			}
			loop.Post(func() {
				if err := doc.ReplaceBody(next.Doc); err != nil {
					logger.Error("replacing page body: %v", err)
					return
				}
				coordinator.NotifyNavigation(domain.NavigationTurbo)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watching %s: %v", opts.Input, err)
		}
	}
}
