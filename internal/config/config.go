// Package config holds explicit configuration structs for every pipeline
// component. Credentials come from the environment; tunables may be
// overridden by an optional YAML file. Nothing else reads os.Getenv.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type R2 struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"-"`
	SecretKey     string `yaml:"-"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type Postgres struct {
	URL string `yaml:"-"`
}

// Tuning groups the empirically chosen knobs. Defaults match production;
// none of them are hard-coded behavior.
type Tuning struct {
	Quality         int     `yaml:"quality"`
	QualityFloor    int     `yaml:"quality_floor"`
	QualityStep     int     `yaml:"quality_step"`
	MaxWidth        int     `yaml:"max_width"`
	MaxBytes        int64   `yaml:"max_bytes"`
	CompressWorkers int     `yaml:"compress_workers"`
	PublishWorkers  int     `yaml:"publish_workers"`
	PacingMillis    int     `yaml:"pacing_millis"`
	FuzzyThreshold  float64 `yaml:"fuzzy_threshold"`
}

type Config struct {
	ReportDir string   `yaml:"report_dir"`
	R2        R2       `yaml:"r2"`
	Postgres  Postgres `yaml:"-"`
	Tuning    Tuning   `yaml:"tuning"`
}

// FromEnv builds a Config from the process environment. Call godotenv.Load
// first if a .env file should participate.
func FromEnv() *Config {
	cfg := &Config{
		ReportDir: os.Getenv("REPORT_DIR"),
		R2: R2{
			Endpoint:      os.Getenv("R2_ENDPOINT"),
			AccessKey:     os.Getenv("R2_ACCESS_KEY"),
			SecretKey:     os.Getenv("R2_SECRET_KEY"),
			Bucket:        os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		Postgres: Postgres{URL: os.Getenv("DATABASE_URL")},
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}
	return cfg
}

// ApplyFile overlays a YAML tunables file onto cfg. A missing file is not
// an error; a malformed one is.
func (cfg *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// RequireR2 fails fast when publish credentials are missing, mirroring the
// env validation the API entrypoint performs.
func (cfg *Config) RequireR2() error {
	missing := []string{}
	if cfg.R2.Endpoint == "" {
		missing = append(missing, "R2_ENDPOINT")
	}
	if cfg.R2.AccessKey == "" {
		missing = append(missing, "R2_ACCESS_KEY")
	}
	if cfg.R2.SecretKey == "" {
		missing = append(missing, "R2_SECRET_KEY")
	}
	if cfg.R2.Bucket == "" {
		missing = append(missing, "R2_BUCKET_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing env vars: %v", missing)
	}
	return nil
}

// RequirePostgres fails fast when the materializer has no database.
func (cfg *Config) RequirePostgres() error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("missing env var: DATABASE_URL")
	}
	return nil
}
