package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"menuforge/internal/compress"
	"menuforge/internal/config"
	"menuforge/internal/report"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress <image-dir> <output-dir>",
		Short: "Recompress source images to the size and width budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			paths, err := listImages(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no images found in %s", args[0])
			}

			batch := compress.Batch(cmd.Context(), paths, compressConfig(cfg),
				func(done, total int) {
					slog.Info("compress progress", "done", done, "total", total)
				})

			if err := os.MkdirAll(args[1], 0755); err != nil {
				return err
			}
			for _, res := range batch.Results {
				out := outputPath(args[1], res.Source)
				if err := os.WriteFile(out, res.Data, 0644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
			}

			path, err := report.NewWriter(cfg.ReportDir).Write(report.CompressionFile, batch)
			if err != nil {
				return err
			}
			slog.Info("compression finished",
				"succeeded", len(batch.Results), "failed", len(batch.Failures), "report", path)
			return nil
		},
	}
	return cmd
}

// compressConfig overlays YAML tunables onto the defaults.
func compressConfig(cfg *config.Config) compress.Config {
	c := compress.DefaultConfig()
	if cfg.Tuning.Quality > 0 {
		c.Quality = cfg.Tuning.Quality
	}
	if cfg.Tuning.QualityFloor > 0 {
		c.QualityFloor = cfg.Tuning.QualityFloor
	}
	if cfg.Tuning.QualityStep > 0 {
		c.QualityStep = cfg.Tuning.QualityStep
	}
	if cfg.Tuning.MaxWidth > 0 {
		c.MaxWidth = cfg.Tuning.MaxWidth
	}
	if cfg.Tuning.MaxBytes > 0 {
		c.MaxBytes = cfg.Tuning.MaxBytes
	}
	if cfg.Tuning.CompressWorkers > 0 {
		c.Workers = cfg.Tuning.CompressWorkers
	}
	return c
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if allowedImageExt[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// outputPath keeps the source base name but always emits .jpg.
func outputPath(dir, source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+".jpg")
}
