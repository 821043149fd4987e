// Package main applies or rolls back the embedded database migrations.
//
// Usage:
//
//	migrate [up|down|status|reset]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/civicreport/civicreport/internal/config"
	"github.com/civicreport/civicreport/internal/repository"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "Maximum time to run migrations")
	flag.Parse()

	direction := repository.MigrateUp
	if flag.NArg() > 0 {
		direction = flag.Arg(0)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := repository.Migrate(ctx, databaseURL, direction); err != nil {
		logger.Error("migration failed", slog.String("direction", direction), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("migration complete", slog.String("direction", direction))
}
