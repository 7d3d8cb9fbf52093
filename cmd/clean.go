package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"menuforge/internal/catalog"
	"menuforge/internal/report"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <in.csv> <out.csv>",
		Short: "Scrub platform marketing noise from a transcribed menu CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rows, err := catalog.ReadFile(args[0])
			if err != nil {
				return err
			}

			cleaned, changes := catalog.Scrub(rows)
			if err := catalog.WriteFile(args[1], cleaned); err != nil {
				return err
			}

			path, err := report.NewWriter(cfg.ReportDir).Write(report.CleanFile, map[string]any{
				"rows":    len(cleaned),
				"changes": changes,
			})
			if err != nil {
				return err
			}

			slog.Info("clean finished",
				"rows", len(cleaned), "fields_cleaned", len(changes), "report", path)
			return nil
		},
	}
	return cmd
}
