package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"menuforge/internal/catalog"
	"menuforge/internal/compress"
	"menuforge/internal/db"
	"menuforge/internal/materialize"
	"menuforge/internal/publish"
	"menuforge/internal/reconcile"
	"menuforge/internal/report"
	"menuforge/internal/slug"
)

func newRunCmd() *cobra.Command {
	var (
		docName string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "run <image-dir> <old.csv> <new.csv>",
		Short: "Run the whole pipeline: compress, publish, reconcile, materialize",
		Long: `Run chains all four stages in memory. Every stage still writes its
report artifact, so a failed run can be resumed with the individual
subcommands from the last good artifact.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireR2(); err != nil {
				return err
			}

			ctx := cmd.Context()
			writer := report.NewWriter(cfg.ReportDir)

			// Stage 1: compress.
			paths, err := listImages(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no images found in %s", args[0])
			}
			compressed := compress.Batch(ctx, paths, compressConfig(cfg), nil)
			if _, err := writer.Write(report.CompressionFile, compressed); err != nil {
				return err
			}
			slog.Info("compressed", "succeeded", len(compressed.Results),
				"failed", len(compressed.Failures))

			// Stage 2: publish.
			store, err := publish.NewR2Store(ctx, cfg.R2)
			if err != nil {
				return fmt.Errorf("init R2: %w", err)
			}
			items := make([]publish.Item, 0, len(compressed.Results))
			for _, res := range compressed.Results {
				base := filepath.Base(res.Source)
				items = append(items, publish.Item{
					OriginalFilename: base,
					DesiredName:      slug.Filename("", slug.Stem(base), base),
					ContentType:      "image/jpeg",
					Data:             res.Data,
				})
			}
			published := publish.New(store, publishConfig(cfg)).Batch(ctx, items, nil)
			if _, err := writer.Write(report.PublishFile, published); err != nil {
				return err
			}
			if _, err := writer.Write(report.AssetsFile, published.Assets); err != nil {
				return err
			}
			slog.Info("published", "assets", len(published.Assets), "failed", len(published.Failures))

			// Stage 3: scrub, then reconcile.
			oldRows, err := catalog.ReadFile(args[1])
			if err != nil {
				return err
			}
			newRows, err := catalog.ReadFile(args[2])
			if err != nil {
				return err
			}
			newRows, changes := catalog.Scrub(newRows)
			if _, err := writer.Write(report.CleanFile, map[string]any{
				"rows": len(newRows), "changes": changes,
			}); err != nil {
				return err
			}

			result := reconcile.Reconcile(oldRows, newRows, published.Assets, reconcileConfig(cfg))
			if _, err := writer.Write(report.ReconcileFile, result); err != nil {
				return err
			}
			reconciled := filepath.Join(cfg.ReportDir, "reconciled.csv")
			if err := catalog.WriteFile(reconciled, result.CatalogRows()); err != nil {
				return err
			}
			slog.Info("reconciled", "rows", len(result.Rows), "counts", result.Counts,
				"output", reconciled)

			// Stage 4: materialize.
			var repo materialize.Repository
			if !dryRun {
				if err := cfg.RequirePostgres(); err != nil {
					return err
				}
				pool, err := db.Connect(ctx, cfg.Postgres)
				if err != nil {
					return err
				}
				defer pool.Close()
				repo = materialize.NewPostgresRepository(pool)
			}

			run, mErr := materialize.New(repo).Materialize(ctx, docName, result.CatalogRows(), dryRun)
			if _, err := writer.Write(report.MaterializeFile, run); err != nil {
				return err
			}
			if mErr != nil {
				return mErr
			}

			slog.Info("pipeline finished", "state", run.State,
				"sections", run.Sections, "entries", run.Entries, "assets", run.Assets)
			return nil
		},
	}

	cmd.Flags().StringVar(&docName, "name", "imported-menu", "catalog document name")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "stop short of database writes")
	return cmd
}
