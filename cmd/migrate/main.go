package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samirrijal/agrobot/internal/adapters/postgres"
	"github.com/samirrijal/agrobot/internal/pkg/config"
	"github.com/samirrijal/agrobot/internal/pkg/logging"
)

const (
	migrationsDir = "migrations"
	downFile      = "down.sql"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("agrobot-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "agrobot-migrate")

	if cfg.Storage.Driver != config.StoragePostgres {
		slog.Info("nothing to migrate: the storage driver manages its own schema", "driver", cfg.Storage.Driver)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		files, err := upFiles(migrationsDir)
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		run(ctx, db, files)
		slog.Info("all migrations applied", "count", len(files))
	case "down":
		run(ctx, db, []string{filepath.Join(migrationsDir, downFile)})
		slog.Info("schema dropped")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// upFiles returns the numbered .sql files of dir in lexical order.
func upFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == downFile || !strings.HasSuffix(name, ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func run(ctx context.Context, db *postgres.DB, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}
}
