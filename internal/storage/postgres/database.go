package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/storage/migrations"
)

const firstRetryDelay = 2 * time.Second

// Open connects to the database in cfg and sizes its pool. A database that
// is still starting is retried with a doubling delay, up to
// cfg.DB.ConnectAttempts tries or until ctx is done.
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	log := logger.Database()

	if err := checkDBConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	gormCfg := &gorm.Config{
		Logger:         newGormLogger(cfg),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		PrepareStmt:    true,
		TranslateError: true,
	}

	attempts := max(cfg.DB.ConnectAttempts, 1)
	delay := firstRetryDelay

	var db *gorm.DB
	var err error
	for attempt := 1; ; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.GetDatabaseURL()), gormCfg)
		if err == nil {
			break
		}
		if attempt == attempts {
			log.Error("database unreachable", "attempts", attempts, "error", err)
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}

		log.Warn("database not reachable yet", "attempt", attempt, "retry_in", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connecting to database: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	log.Info("Connected to PostgreSQL",
		"host", cfg.DB.Host,
		"database", cfg.DB.Name,
		"max_open_conns", cfg.DB.MaxOpenConns,
		"max_idle_conns", cfg.DB.MaxIdleConns)
	return db, nil
}

// newGormLogger routes gorm's own logging through the database logger.
// Every statement is logged in gin debug mode; otherwise only slow queries
// and errors.
func newGormLogger(cfg *config.Config) gormLogger.Interface {
	level := gormLogger.Warn
	if cfg.Server.GinMode == "debug" {
		level = gormLogger.Info
	}
	return gormLogger.New(logger.Database(), gormLogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func checkDBConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	required := []struct{ name, value string }{
		{"DB_HOST", cfg.DB.Host},
		{"DB_PORT", cfg.DB.Port},
		{"DB_NAME", cfg.DB.Name},
		{"DB_USER", cfg.DB.User},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is empty", r.name)
		}
	}
	return nil
}

// Ping checks that db answers before ctx is done.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *gorm.DB) error {
	log := logger.Migration()

	if err := Ping(ctx, db); err != nil {
		return err
	}

	start := time.Now()
	if err := migrations.RunMigrations(db.WithContext(ctx)); err != nil {
		log.Error("Database migrations failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations applied", "duration", time.Since(start))
	return nil
}
