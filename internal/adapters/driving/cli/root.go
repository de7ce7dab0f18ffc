// Package cli provides the cobra commands of the highlight binary.
package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/highlight/internal/adapters/driven/config/file"
	"github.com/custodia-labs/highlight/internal/adapters/driven/scheduler"
	"github.com/custodia-labs/highlight/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/highlight/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
	"github.com/custodia-labs/highlight/internal/core/ports/driving"
	"github.com/custodia-labs/highlight/internal/core/services"
	"github.com/custodia-labs/highlight/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Store kinds accepted by --store.
const (
	storeFile   = "file"
	storeSQLite = "sqlite"
	storeMemory = "memory"
)

// Persistent flags.
var (
	verbose       bool
	configDir     string
	storeKind     string
	rootExprs     []string
	frameInterval time.Duration
)

// Services shared by commands. They are opened lazily on first use, or
// injected with SetStore.
var (
	configStore   driven.ConfigStore
	configService driving.ConfigService
	fileStore     *file.ConfigStore
	storeCloser   func() error
)

var rootCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Highlight your name and watched identifiers in HTML pages",
	Long: `highlight marks every occurrence of your own name and a list of watched
identifiers in the text of HTML pages, painting each with its configured
colour. It can annotate pages once, keep an output file annotated while
its input changes, or serve annotated pages over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.highlight)")
	flags.StringVar(&storeKind, "store", storeFile, "configuration store: file, sqlite or memory")
	flags.StringArrayVar(&rootExprs, "root", nil, "XPath expression of a content root to annotate (repeatable)")
	flags.DurationVar(&frameInterval, "frame", scheduler.DefaultFrameInterval, "frame interval of the watch event loop")
}

// Execute runs the root command and releases the configuration store.
func Execute() error {
	defer closeStore()
	return rootCmd.Execute()
}

// SetStore injects the configuration store used by every command. Passing
// nil makes the next command open the store selected by --store.
func SetStore(store driven.ConfigStore) {
	configStore = store
	configService = nil
	if store != nil {
		configService = services.NewConfigService(store)
	}
}

// openStore returns the configuration store, opening it on first use.
func openStore() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}

	var store driven.ConfigStore
	switch storeKind {
	case storeFile, "":
		s, err := file.NewConfigStore(configDir)
		if err != nil {
			return nil, err
		}
		fileStore = s
		storeCloser = s.Close
		store = s
	case storeSQLite:
		dataDir := ""
		if configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		s, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, err
		}
		storeCloser = s.Close
		store = s.ConfigStore()
	case storeMemory:
		store = memory.NewConfigStore(nil)
	default:
		return nil, fmt.Errorf("%w: unknown store %q (want file, sqlite or memory)", domain.ErrInvalidInput, storeKind)
	}

	logger.Debug("Using %s configuration store at %s", storeKind, store.Path())
	SetStore(store)
	return store, nil
}

// getConfigService returns the config service over the open store.
func getConfigService() (driving.ConfigService, error) {
	if _, err := openStore(); err != nil {
		return nil, err
	}
	return configService, nil
}

// closeStore releases a store opened by openStore.
func closeStore() {
	if storeCloser != nil {
		if err := storeCloser(); err != nil {
			logger.Error("closing configuration store: %v", err)
		}
		storeCloser = nil
	}
	fileStore = nil
}

// contentRegions returns the roots selected by --root, or the curated
// GitHub regions when none were given.
func contentRegions() ([]annotator.Region, error) {
	if len(rootExprs) == 0 {
		return annotator.GitHubRegions(), nil
	}
	regions, err := annotator.ParseRegions(rootExprs)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return annotator.GitHubRegions(), nil
	}
	return regions, nil
}
