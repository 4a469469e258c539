package cmdimport

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pcp-stats/connectors/config"
	ccsv "pcp-stats/connectors/csv"
	"pcp-stats/connectors/postgres"
	cs3 "pcp-stats/connectors/s3"
	"pcp-stats/domain/pcp"
)

// Run executes the import subcommand. It fetches the monthly base table from S3 or PostgreSQL
// into <data>/<base> so the other commands can read it.
func Run(args []string) error {
	cfg, err := config.LoadOrDefault(config.Path())
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fromS3 := fs.Bool("s3", false, "download the base CSV from sources.s3 (bucket/key)")
	fromPostgres := fs.Bool("postgres", false, "read the base table from sources.postgres (url or PCP_DATABASE_URL)")
	key := fs.String("key", cfg.Sources.S3.Key, "S3 object key (overrides config)")
	since := fs.String("since", "", "only rows from this month on, e.g. 2024-01-01 (postgres only)")
	dataDir := fs.String("data", cfg.Data.Dir, "destination directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fromS3 == *fromPostgres {
		return fmt.Errorf("import: choose exactly one of -s3 or -postgres")
	}

	dest := filepath.Join(*dataDir, cfg.Data.Base)
	ctx := context.Background()
	if *fromS3 {
		return importS3(ctx, cfg.Sources.S3, *key, dest)
	}
	return importPostgres(ctx, cfg.Sources.Postgres, *since, dest)
}

func importS3(ctx context.Context, src config.S3Source, key, dest string) error {
	if src.Bucket == "" || key == "" {
		slog.Error("import.validation.error", "reason", "missing sources.s3.bucket or key")
		return fmt.Errorf("missing S3 bucket or key")
	}
	slog.Info("import.s3.start", "bucket", src.Bucket, "key", key, "region", src.Region)
	client, err := cs3.New(ctx, src.Region, src.Profile, src.Bucket)
	if err != nil {
		return err
	}
	return fetchS3(ctx, client, key, dest)
}

// fetchS3 replaces dest with the object at key once it parses as a base table.
func fetchS3(ctx context.Context, client *cs3.Client, key, dest string) error {
	var ds pcp.Dataset
	n, err := client.Download(ctx, key, dest, func(path string) error {
		var err error
		ds, err = ccsv.ReadBaseFile(path)
		return err
	})
	if err != nil {
		slog.Error("import.s3.error", "error", err)
		return err
	}
	slog.Info("import.s3.done", "bytes", n, "records", ds.Len(), "output", dest)
	return nil
}

func importPostgres(ctx context.Context, src config.PostgresSource, since, dest string) error {
	url := src.URL
	if env := os.Getenv("PCP_DATABASE_URL"); env != "" {
		url = env
	}
	if url == "" {
		slog.Error("import.validation.error", "reason", "missing database url")
		return fmt.Errorf("missing sources.postgres.url or PCP_DATABASE_URL")
	}
	var from *time.Time
	if since != "" {
		t, err := time.Parse(pcp.DateLayout, since)
		if err != nil {
			return fmt.Errorf("invalid -since %q: %w", since, err)
		}
		from = &t
	}

	slog.Info("import.postgres.start", "table", src.Table, "since", since)
	pool, err := postgres.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer pool.Close()

	ds, err := postgres.NewSource(pool, src.Table).Load(ctx, from)
	if err != nil {
		slog.Error("import.postgres.error", "error", err)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := ccsv.WriteRecords(f, ds.Capabilities(), ds.Records()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("import.postgres.done", "records", ds.Len(), "output", dest)
	return nil
}
