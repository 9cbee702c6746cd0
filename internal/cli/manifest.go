package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/autoapi/pkg/source"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Introspect the Django project and save its app manifest",
	Long: `Run the project's manage.py shell once, capture every installed app with its
models and fields, and save the result as YAML. Pass the file to later runs
with --manifest to skip introspection.`,
	RunE: runManifest,
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.Flags().StringP("out", "o", "autoapi-manifest.yaml", "Output file")
}

func runManifest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	outPath, _ := cmd.Flags().GetString("out")

	m, err := source.Introspect(cmd.Context(), source.Options{
		Python:     cfg.Source.Python,
		ProjectDir: cfg.Source.ProjectDir,
		Settings:   cfg.Source.Settings,
		Timeout:    cfg.Source.Timeout,
	})
	if err != nil {
		return fmt.Errorf("introspect project: %w", err)
	}

	if err := source.WriteManifest(outPath, m); err != nil {
		return err
	}
	logger.Debug("manifest written", "path", outPath, "apps", len(m.Apps))

	fmt.Fprintln(cmd.OutOrStdout(), success(fmt.Sprintf("Saved %d apps, %d models to %s", len(m.Apps), m.ModelCount(), outPath)))
	return nil
}
