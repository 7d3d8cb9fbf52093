package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"menuforge/internal/catalog"
	"menuforge/internal/config"
	"menuforge/internal/publish"
	"menuforge/internal/reconcile"
	"menuforge/internal/report"
)

func newReconcileCmd() *cobra.Command {
	var assetsFile string

	cmd := &cobra.Command{
		Use:   "reconcile <old.csv> <new.csv> <out.csv>",
		Short: "Match new catalog rows to existing and freshly published assets",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			oldRows, err := catalog.ReadFile(args[0])
			if err != nil {
				return err
			}
			newRows, err := catalog.ReadFile(args[1])
			if err != nil {
				return err
			}

			published := map[string]publish.PublishedAsset{}
			if assetsFile != "" {
				if err := report.Read(assetsFile, &published); err != nil && !os.IsNotExist(err) {
					return err
				}
			}

			result := reconcile.Reconcile(oldRows, newRows, published, reconcileConfig(cfg))
			if err := catalog.WriteFile(args[2], result.CatalogRows()); err != nil {
				return err
			}

			path, err := report.NewWriter(cfg.ReportDir).Write(report.ReconcileFile, result)
			if err != nil {
				return err
			}

			slog.Info("reconcile finished",
				"rows", len(result.Rows),
				"exact", result.Counts[reconcile.OutcomeExact],
				"fuzzy", result.Counts[reconcile.OutcomeFuzzy],
				"newly_published", result.Counts[reconcile.OutcomeNewlyPublished],
				"no_asset", result.Counts[reconcile.OutcomeNoAsset],
				"report", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&assetsFile, "assets", "", "published-assets.json from the publish stage")
	return cmd
}

func reconcileConfig(cfg *config.Config) reconcile.Config {
	c := reconcile.DefaultConfig()
	if cfg.Tuning.FuzzyThreshold > 0 {
		c.FuzzyThreshold = cfg.Tuning.FuzzyThreshold
	}
	return c
}
