package db

import (
	"context"
	"os"
	"testing"
	"time"

	"menuforge/internal/config"
)

func TestConnectRejectsBadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Connect(ctx, config.Postgres{URL: "not a dsn ://"})
	if err == nil {
		t.Fatal("expected error for malformed DATABASE_URL")
	}
}

func TestConnectIntegration(t *testing.T) {
	// Runs only against a real database.
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, config.Postgres{URL: url})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_documents`).Scan(&n); err != nil {
		t.Fatalf("schema not initialized: %v", err)
	}
}
