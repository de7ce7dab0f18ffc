package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/adapters/driving/preview"
	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Output formats accepted by --format.
const (
	formatHTML     = "html"
	formatTerminal = "terminal"
	formatAuto     = "auto"
)

var (
	annotateOut    string
	annotateOutDir string
	annotateFormat string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <file|url|glob>...",
	Short: "Highlight identifiers in HTML or Markdown pages",
	Long: `Annotate each page once with the current configuration.

Inputs are local HTML or Markdown files, http(s) URLs, or glob patterns
such as "pages/**/*.html". A single page is written to stdout, or to the
file given by --out. Batches need --out-dir, where each page is written
under its own name.

With --format terminal the page text is printed with coloured markers
instead of HTML. The default, auto, picks terminal output when stdout is
a terminal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateOut, "out", "o", "", "write the annotated page to this file")
	annotateCmd.Flags().StringVar(&annotateOutDir, "out-dir", "", "write annotated pages into this directory")
	annotateCmd.Flags().StringVar(&annotateFormat, "format", formatAuto, "output format: html, terminal or auto")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	cfg, err := svc.Get()
	if err != nil {
		logger.Error("loading configuration: %v", err)
	}
	if cfg.IsEmpty() {
		logger.Warn("No viewer or identifiers configured; pages are copied unchanged")
	}

	regions, err := contentRegions()
	if err != nil {
		return err
	}

	loader := source.NewLoader()
	refs, err := loader.Expand(args)
	if err != nil {
		return err
	}
	if len(refs) > 1 && annotateOutDir == "" {
		return fmt.Errorf("%w: %d pages matched; use --out-dir to write a batch", domain.ErrInvalidInput, len(refs))
	}
	if annotateOut != "" && annotateOutDir != "" {
		return fmt.Errorf("%w: --out and --out-dir are mutually exclusive", domain.ErrInvalidInput)
	}

	format, err := resolveFormat(annotateFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if annotateOutDir != "" {
		if err := os.MkdirAll(annotateOutDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	progress := newReporter(cmd.ErrOrStderr())
	if len(refs) > 1 {
		progress.Start(len(refs))
		defer progress.Finish()
	}

	var total annotator.ScanStats
	failed := 0
	for i, ref := range refs {
		stats, err := annotateOne(ctx, cmd, loader, ref, cfg, regions, format)
		if err != nil {
			logger.Error("%s: %v", ref, err)
			failed++
		}
		total.Add(stats)
		if len(refs) > 1 {
			progress.Update(i+1, ref)
		}
	}

	logger.Info("Annotated %d page(s): %d marker(s) in %d run(s)", len(refs)-failed, total.Markers, total.Annotated)
	if failed > 0 {
		return fmt.Errorf("%d of %d page(s) failed", failed, len(refs))
	}
	return nil
}

// annotateOne loads, annotates and writes a single page.
func annotateOne(
	ctx context.Context,
	cmd *cobra.Command,
	loader *source.Loader,
	ref string,
	cfg domain.Configuration,
	regions []annotator.Region,
	format string,
) (annotator.ScanStats, error) {
	page, err := loader.Load(ctx, ref)
	if err != nil {
		return annotator.ScanStats{}, err
	}
	stats := annotator.AnnotateDocument(page.Doc, cfg, regions)
	logger.Debug("%s: %d marker(s)", ref, stats.Markers)

	switch {
	case annotateOutDir != "":
		return stats, writePage(filepath.Join(annotateOutDir, source.OutputName(ref)), page.Doc)
	case annotateOut != "":
		return stats, writePage(annotateOut, page.Doc)
	default:
		return stats, renderPage(cmd.OutOrStdout(), page.Doc, format)
	}
}

func renderPage(w io.Writer, doc *dom.Document, format string) error {
	if format == formatTerminal {
		_, err := fmt.Fprintln(w, preview.Document(doc))
		return err
	}
	return doc.Render(w)
}

// writePage renders doc into path.
func writePage(path string, doc *dom.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := doc.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// resolveFormat validates --format and resolves auto against w.
func resolveFormat(format string, w io.Writer) (string, error) {
	switch format {
	case formatHTML, formatTerminal:
		return format, nil
	case formatAuto, "":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return formatTerminal, nil
		}
		return formatHTML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want html, terminal or auto)", domain.ErrInvalidInput, format)
	}
}
