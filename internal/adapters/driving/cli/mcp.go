package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead.

Tools:
  highlight_text     find the viewer and watched identifiers in text
  highlight_page     annotate an HTML or Markdown page
  add_identifier     watch an identifier
  remove_identifier  stop watching an identifier
  set_viewer         set the viewer's name and colour

Resources:
  highlight://config              the current configuration
  highlight://preview             a sample comment using every identifier
  highlight://identifiers/{text}  one watched identifier

Examples:
  # Stdio mode (default)
  highlight mcp serve

  # HTTP mode
  highlight mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	svc, err := getConfigService()
	if err != nil {
		return err
	}
	regions, err := contentRegions()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Config:  svc,
		Loader:  source.NewLoader(),
		Regions: regions,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
