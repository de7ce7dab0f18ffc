package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/highlight/internal/logger"
)

var (
	serveAddr string
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve annotated pages and the configuration API",
	Long: `Start an HTTP server that annotates pages from --dir on request.

Routes:
  GET    /healthz                 health check
  GET    /pages/{path}            annotated page
  GET    /api/config              current configuration
  PUT    /api/viewer              set the viewer {"text", "color"}
  POST   /api/identifiers         watch an identifier {"text", "color"}
  PUT    /api/identifiers/{text}  recolour an identifier {"color"}
  DELETE /api/identifiers/{text}  stop watching an identifier`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveDir, "dir", "pages", "directory of pages to serve")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	regions, err := contentRegions()
	if err != nil {
		return err
	}

	server := httpapi.New(httpapi.Config{
		Addr:     serveAddr,
		PagesDir: serveDir,
		Regions:  regions,
	}, svc, source.NewLoader())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
