package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"menuforge/internal/config"
	"menuforge/internal/publish"
	"menuforge/internal/report"
	"menuforge/internal/slug"
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <compressed-dir>",
		Short: "Upload compressed images to the asset store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireR2(); err != nil {
				return err
			}

			store, err := publish.NewR2Store(cmd.Context(), cfg.R2)
			if err != nil {
				return fmt.Errorf("init R2: %w", err)
			}

			items, err := loadItems(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no images found in %s", args[0])
			}

			publisher := publish.New(store, publishConfig(cfg))
			result := publisher.Batch(cmd.Context(), items, func(done, total int) {
				slog.Info("publish progress", "done", done, "total", total)
			})

			writer := report.NewWriter(cfg.ReportDir)
			if _, err := writer.Write(report.PublishFile, result); err != nil {
				return err
			}
			// The mapping artifact alone is what reconciliation consumes.
			path, err := writer.Write(report.AssetsFile, result.Assets)
			if err != nil {
				return err
			}

			slog.Info("publish finished",
				"published", len(result.Assets), "failed", len(result.Failures), "artifact", path)
			return nil
		},
	}
	return cmd
}

func publishConfig(cfg *config.Config) publish.Config {
	c := publish.DefaultConfig()
	if cfg.Tuning.PublishWorkers > 0 {
		c.Concurrency = cfg.Tuning.PublishWorkers
	}
	if cfg.Tuning.PacingMillis > 0 {
		c.Pacing = time.Duration(cfg.Tuning.PacingMillis) * time.Millisecond
	}
	// Per-run prefix: re-publishing the same files never reuses keys.
	c.KeyPrefix = "menus/" + uuid.New().String()
	return c
}

func loadItems(dir string) ([]publish.Item, error) {
	paths, err := listImages(dir)
	if err != nil {
		return nil, err
	}

	items := make([]publish.Item, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		base := filepath.Base(p)
		items = append(items, publish.Item{
			OriginalFilename: base,
			DesiredName:      slug.Filename("", slug.Stem(base), base),
			ContentType:      "image/jpeg",
			Data:             data,
		})
	}
	return items, nil
}
