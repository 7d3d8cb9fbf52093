package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"menuforge/internal/config"
)

var (
	cfgFile   string
	reportDir string
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menuforge",
		Short: "Menu catalog materialization pipeline",
		Long: `Menuforge turns a folder of oversized menu photos and a manually
transcribed menu CSV into a CDN-backed, relationally consistent catalog.

The four stages (compress, publish, reconcile, materialize) run
independently and leave a JSON report behind, so any stage can be
inspected and re-run from the previous stage's artifact.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "pipeline.yaml", "optional YAML tunables file")
	cmd.PersistentFlags().StringVar(&reportDir, "reports", "", "report artifact directory (default $REPORT_DIR or ./reports)")

	cmd.AddCommand(newCompressCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newMaterializeCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// loadConfig merges env, the optional YAML file and the global flags.
func loadConfig() (*config.Config, error) {
	cfg := config.FromEnv()
	if err := cfg.ApplyFile(cfgFile); err != nil {
		return nil, err
	}
	if reportDir != "" {
		cfg.ReportDir = reportDir
	}
	return cfg, nil
}
