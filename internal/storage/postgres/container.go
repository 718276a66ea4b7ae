package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// Container groups the repositories that share one database connection
type Container struct {
	db             *gorm.DB
	log            *log.Logger
	locationRepo   LocationRepository
	candidateRepo  CandidateRepository
	submissionRepo SubmissionRepository
	resultRepo     ResultRepository
	tallyRepo      TallyRepository
}

// Dial connects and wraps the connection in a container without touching
// the schema.
func Dial(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewContainerWithDB(db), nil
}

// NewContainer connects, applies pending migrations and checks that every
// repository table is reachable.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	container, err := Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, container.db); err != nil {
		_ = container.Close()
		return nil, err
	}

	if err := container.Health(ctx); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:             db,
		log:            logger.Repository("postgres_container"),
		locationRepo:   NewPostgresLocationRepository(db),
		candidateRepo:  NewPostgresCandidateRepository(db),
		submissionRepo: NewPostgresSubmissionRepository(db),
		resultRepo:     NewPostgresResultRepository(db),
		tallyRepo:      NewPostgresTallyRepository(db),
	}
}

// Locations returns the location repository
func (c *Container) Locations() LocationRepository {
	return c.locationRepo
}

// Candidates returns the candidate repository
func (c *Container) Candidates() CandidateRepository {
	return c.candidateRepo
}

// Submissions returns the submission repository
func (c *Container) Submissions() SubmissionRepository {
	return c.submissionRepo
}

// Results returns the result repository
func (c *Container) Results() ResultRepository {
	return c.resultRepo
}

// Tallies returns the tally repository
func (c *Container) Tallies() TallyRepository {
	return c.tallyRepo
}

// Ping checks that the database answers.
func (c *Container) Ping(ctx context.Context) error {
	return Ping(ctx, c.db)
}

// Health checks the connection and that every table the repositories read
// is reachable.
func (c *Container) Health(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return err
	}

	tables := []string{"polling_stations", "candidates", "submissions", "results", "candidate_votes"}
	for _, table := range tables {
		var count int64
		if err := c.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("table %s health check failed: %w", table, err)
		}
	}
	return nil
}

// Close closes the container's database connection.
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}

	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	stats := sqlDB.Stats()
	if err := sqlDB.Close(); err != nil {
		c.log.Error("Failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	c.db = nil

	c.log.Info("PostgreSQL connection closed",
		"open_connections", stats.OpenConnections,
		"wait_count", stats.WaitCount)
	return nil
}

// CloseWithTimeout closes the container with a timeout
func (c *Container) CloseWithTimeout(timeout time.Duration) error {
	done := make(chan error, 1)

	go func() {
		done <- c.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		c.log.Error("Container close operation timed out", "timeout", timeout)
		return fmt.Errorf("container close operation timed out after %v", timeout)
	}
}

// GetDB returns the underlying database connection
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
