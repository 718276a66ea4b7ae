package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/storage/migrations"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
)

type options struct {
	rollback bool
	seed     bool
	status   bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.rollback, "rollback", false, "Rollback the last migration")
	flag.BoolVar(&opts.seed, "seed", false, "Load the sample geography and candidates after migrating")
	flag.BoolVar(&opts.status, "status", false, "List applied migrations and exit")
	flag.Parse()

	cfg := config.Load()
	logger.InitializeWithFormat(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, opts); err != nil {
		logger.Migration().Error("Migration process failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("Migration process completed!")
}

func run(cfg *config.Config, opts options) error {
	log := logger.Migration()
	log.Info("Starting migration process", "rollback", opts.rollback, "seed", opts.seed, "status", opts.status)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Dial(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer container.Close()
	db := container.GetDB().WithContext(ctx)

	switch {
	case opts.status:
		applied, err := migrations.AppliedMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to read applied migrations: %w", err)
		}
		for _, id := range applied {
			fmt.Println(id)
		}
		return nil

	case opts.rollback:
		log.Info("Rolling back migrations...")
		if err := migrations.RollbackMigration(db); err != nil {
			return fmt.Errorf("migration rollback failed: %w", err)
		}
		log.Info("Migration rollback completed successfully")
		return nil
	}

	if err := postgres.Migrate(ctx, container.GetDB()); err != nil {
		return err
	}
	if opts.seed {
		if err := migrations.SeedSampleData(db); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info("Sample data loaded")
	}
	return nil
}
