package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/location"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// PostgresLocationRepository implements LocationRepository using GORM
type PostgresLocationRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresLocationRepository creates a new PostgreSQL location repository
func NewPostgresLocationRepository(db *gorm.DB) *PostgresLocationRepository {
	return &PostgresLocationRepository{
		db:  db,
		log: logger.Repository("location"),
	}
}

func (r *PostgresLocationRepository) GetPollingStation(ctx context.Context, id uint) (*location.PollingStation, error) {
	r.log.Debug("retrieving polling station", "polling_station_id", id)

	var station location.PollingStation
	if err := r.db.WithContext(ctx).First(&station, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("polling station not found", "polling_station_id", id)
			return nil, submission.ErrStationNotFound
		}
		r.log.Error("failed to retrieve polling station", "polling_station_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve polling station: %w", err)
	}

	return &station, nil
}
