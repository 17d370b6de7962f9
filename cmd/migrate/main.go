package main

// Run database migrations:
//   go run ./cmd/migrate          # apply pending migrations
//   go run ./cmd/migrate status   # list applied state
//   go run ./cmd/migrate down     # roll back the latest migration

import (
	"context"
	"fmt"
	"os"

	"resume-manager/internal/shared/config"
	"resume-manager/internal/shared/storage/db"
	"resume-manager/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	case "down":
		err = db.RollbackLast(ctx, sqlDB)
	default:
		return fmt.Errorf("unknown command %q (want up, status or down)", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
	return nil
}
