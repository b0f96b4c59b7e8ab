package main

import (
	"context"
	"time"

	mongoMigration "huddle/internal/migrations/mongo"
	pgMigration "huddle/internal/migrations/postgres"
	"huddle/pkg/config"
)

const JobName = "lobbies-migration"

func main() {
	cfg := config.Load(JobName)
	cfg.SetStore()
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg.Log.Info("Starting migration job", "store", cfg.StoreDriver)
	if err := migrate(ctx, cfg); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		cancel()
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration job aborted")
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return pgMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log)
	default:
		return mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	}
}
