package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/highlight/internal/adapters/driving/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview [text]",
	Short: "Preview how identifiers are highlighted",
	Long: `Print a sample comment with the viewer and watched identifiers
highlighted in their colours. Pass text to preview your own sentence.`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	svc, err := getConfigService()
	if err != nil {
		return err
	}
	cfg, err := svc.Get()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if text == "" {
		sample, ok := preview.SampleText(cfg)
		if !ok {
			cmd.Println(preview.DefaultStyles().Muted.Render(preview.EmptyMessage))
			return nil
		}
		text = sample
	}

	cmd.Println(preview.Text(text, cfg))
	return nil
}
