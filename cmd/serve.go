package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"menuforge/internal/reportserver"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stage reports over HTTP for operator review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			slog.Info("serving reports", "dir", cfg.ReportDir, "addr", addr)
			return reportserver.Serve(cfg.ReportDir, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	return cmd
}
