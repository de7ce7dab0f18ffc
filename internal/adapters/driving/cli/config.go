package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/highlight/internal/adapters/driven/identity/github"
	"github.com/custodia-labs/highlight/internal/adapters/driven/identity/page"
	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/adapters/driving/preview"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driven"
)

var (
	configColor  string
	detectGitHub bool
	detectPage   string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the viewer and watched identifiers",
	Long: `View and edit the identifier configuration.

The viewer is your own name, highlighted with its own colour and marked as
self. Watched identifiers are other names or strings to highlight.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configViewerCmd = &cobra.Command{
	Use:   "viewer <name>",
	Short: "Set the viewer's name",
	Long: `Set the name highlighted as your own. Pass an empty string to clear it.
Use --color to change the viewer colour at the same time.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigViewer,
}

var configAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Watch an identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigAdd,
}

var configRemoveCmd = &cobra.Command{
	Use:     "remove <text>",
	Aliases: []string{"rm"},
	Short:   "Stop watching an identifier",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigRemove,
}

var configColorCmd = &cobra.Command{
	Use:   "color <text> <hex>",
	Short: "Change the colour of a watched identifier",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigColor,
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert legacy configuration to the current format",
	Long: `Convert plain-string identifiers to {text, color} entries and backfill a
missing viewer colour. Running it again changes nothing.`,
	Args: cobra.NoArgs,
	RunE: runConfigMigrate,
}

var configDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the viewer's name and save it",
	Long: `Detect the viewer's name and save it as the viewer.

With --page, the name is read from the page's user-login metadata or
profile avatar. With --github, it is the login of the account owning the
token in GITHUB_TOKEN or GH_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runConfigDetect,
}

func init() {
	configViewerCmd.Flags().StringVar(&configColor, "color", "", "viewer colour, e.g. #d1ecf1")
	configAddCmd.Flags().StringVar(&configColor, "color", "", "marker colour (default "+domain.DefaultMarkerColor+")")
	configDetectCmd.Flags().BoolVar(&detectGitHub, "github", false, "ask the GitHub API for the token owner's login")
	configDetectCmd.Flags().StringVar(&detectPage, "page", "", "read the viewer from an HTML page or URL")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configViewerCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configColorCmd)
	configCmd.AddCommand(configMigrateCmd)
	configCmd.AddCommand(configDetectCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	cfg, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get configuration: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Viewer]")
	if cfg.Viewer.IsZero() {
		cmd.Println("  Name: (not set)")
	} else {
		cmd.Printf("  Name: %s\n", preview.Badge(cfg.Viewer.Text, cfg.Viewer.Color))
	}
	cmd.Printf("  Colour: %s\n", cfg.Viewer.Color)
	cmd.Println()

	cmd.Printf("[Identifiers] %d\n", len(cfg.Watchlist))
	if len(cfg.Watchlist) == 0 {
		cmd.Println("  (none)")
	}
	for _, id := range cfg.Watchlist {
		cmd.Printf("  %s  %s\n", preview.Badge(id.Text, id.Color), id.Color)
	}
	cmd.Println()

	if configStore != nil {
		cmd.Printf("Store: %s\n", configStore.Path())
	}
	return nil
}

func runConfigViewer(cmd *cobra.Command, args []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	if err := svc.SetViewer(args[0], configColor); err != nil {
		return fmt.Errorf("failed to set viewer: %w", err)
	}
	if args[0] == "" {
		cmd.Println("Viewer cleared.")
		return nil
	}
	cmd.Printf("Viewer set to %s.\n", args[0])
	return nil
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	if err := svc.AddIdentifier(args[0], configColor); err != nil {
		return fmt.Errorf("failed to add identifier: %w", err)
	}
	cmd.Printf("Watching %s.\n", args[0])
	return nil
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	if err := svc.RemoveIdentifier(args[0]); err != nil {
		return fmt.Errorf("failed to remove identifier: %w", err)
	}
	cmd.Printf("No longer watching %s.\n", args[0])
	return nil
}

func runConfigColor(cmd *cobra.Command, args []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	if err := svc.SetIdentifierColor(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set colour: %w", err)
	}
	cmd.Printf("%s is now %s.\n", args[0], args[1])
	return nil
}

func runConfigMigrate(cmd *cobra.Command, _ []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	changed, err := svc.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if changed {
		cmd.Println("Configuration migrated.")
	} else {
		cmd.Println("Configuration already up to date.")
	}
	return nil
}

func runConfigDetect(cmd *cobra.Command, _ []string) error {
	if detectGitHub == (detectPage != "") {
		return fmt.Errorf("%w: pass exactly one of --github or --page", domain.ErrInvalidInput)
	}

	svc, err := getConfigService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resolver, err := viewerResolver(ctx)
	if err != nil {
		return err
	}
	name, err := resolver.ResolveViewer(ctx)
	if err != nil {
		return fmt.Errorf("detecting viewer: %w", err)
	}
	if name == "" {
		return fmt.Errorf("%w: no viewer found", domain.ErrNotFound)
	}

	if err := svc.SetViewer(name, ""); err != nil {
		return fmt.Errorf("failed to set viewer: %w", err)
	}
	cmd.Printf("Viewer set to %s.\n", name)
	return nil
}

// viewerResolver builds the resolver selected by the detect flags.
func viewerResolver(ctx context.Context) (driven.ViewerResolver, error) {
	if detectGitHub {
		token := githubToken()
		if token == "" {
			return nil, errors.New("set GITHUB_TOKEN or GH_TOKEN to detect the viewer from GitHub")
		}
		return github.NewResolver(ctx, token), nil
	}

	p, err := source.NewLoader().Load(ctx, detectPage)
	if err != nil {
		return nil, err
	}
	return page.NewResolver(p.Doc), nil
}

func githubToken() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}
