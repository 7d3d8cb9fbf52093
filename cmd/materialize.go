package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"menuforge/internal/catalog"
	"menuforge/internal/db"
	"menuforge/internal/materialize"
	"menuforge/internal/report"
)

func newMaterializeCmd() *cobra.Command {
	var (
		docName string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "materialize <reconciled.csv>",
		Short: "Write the reconciled catalog into the database in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rows, err := catalog.ReadFile(args[0])
			if err != nil {
				return err
			}

			var repo materialize.Repository
			if !dryRun {
				if err := cfg.RequirePostgres(); err != nil {
					return err
				}
				pool, err := db.Connect(cmd.Context(), cfg.Postgres)
				if err != nil {
					return err
				}
				defer pool.Close()
				repo = materialize.NewPostgresRepository(pool)
			}

			run, mErr := materialize.New(repo).Materialize(cmd.Context(), docName, rows, dryRun)

			if _, err := report.NewWriter(cfg.ReportDir).Write(report.MaterializeFile, run); err != nil {
				return err
			}
			if mErr != nil {
				return mErr
			}

			slog.Info("materialize finished", "state", run.State,
				"sections", run.Sections, "entries", run.Entries, "assets", run.Assets)
			return nil
		},
	}

	cmd.Flags().StringVar(&docName, "name", "imported-menu", "catalog document name")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and group without writing")
	return cmd
}
