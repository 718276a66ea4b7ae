package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// PostgresCandidateRepository implements CandidateRepository using GORM
type PostgresCandidateRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresCandidateRepository creates a new PostgreSQL candidate repository
func NewPostgresCandidateRepository(db *gorm.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{
		db:  db,
		log: logger.Repository("candidate"),
	}
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id uint) (*candidate.Candidate, error) {
	r.log.Debug("retrieving candidate by ID", "candidate_id", id)

	var c candidate.Candidate
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("candidate not found", "candidate_id", id)
			return nil, submission.ErrCandidateNotFound
		}
		r.log.Error("failed to retrieve candidate", "candidate_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve candidate: %w", err)
	}

	return &c, nil
}

// areaChain holds the ancestry of the area a scope points at.
type areaChain struct {
	CountyID       *uint
	ConstituencyID *uint
	WardID         *uint
}

// ListBallot returns the ballot entries for position whose race covers the
// scope's area. System users are never returned.
func (r *PostgresCandidateRepository) ListBallot(ctx context.Context, position candidate.Position, sc scope.Scope) ([]*candidate.Candidate, error) {
	r.log.Debug("listing ballot", "position", position, "scope", sc.String())

	if sc.Denied {
		return []*candidate.Candidate{}, nil
	}

	chain, found, err := r.resolveArea(ctx, sc)
	if err != nil {
		r.log.Error("failed to resolve scope area", "scope", sc.String(), "error", err)
		return nil, fmt.Errorf("failed to resolve scope area: %w", err)
	}
	if !found {
		r.log.Debug("scope area does not exist", "scope", sc.String())
		return []*candidate.Candidate{}, nil
	}

	query := r.db.WithContext(ctx).
		Where("position = ? AND is_system_user = ?", position, false)
	if chain.CountyID != nil {
		query = query.Where("(county_id IS NULL OR county_id = ?)", *chain.CountyID)
	}
	if chain.ConstituencyID != nil {
		query = query.Where("(constituency_id IS NULL OR constituency_id = ?)", *chain.ConstituencyID)
	}
	if chain.WardID != nil {
		query = query.Where("(ward_id IS NULL OR ward_id = ?)", *chain.WardID)
	}

	candidates := make([]*candidate.Candidate, 0)
	if err := query.Order("name, id").Find(&candidates).Error; err != nil {
		r.log.Error("failed to list ballot", "position", position, "error", err)
		return nil, fmt.Errorf("failed to list ballot: %w", err)
	}

	r.log.Debug("ballot listed", "position", position, "count", len(candidates))
	return candidates, nil
}

func (r *PostgresCandidateRepository) resolveArea(ctx context.Context, sc scope.Scope) (areaChain, bool, error) {
	var chain areaChain
	db := r.db.WithContext(ctx)

	var rows []areaChain
	var err error
	switch sc.Level {
	case scope.LevelNational:
		return chain, true, nil
	case scope.LevelCounty:
		err = db.Raw("SELECT id AS county_id FROM counties WHERE id = ?", sc.ID).Scan(&rows).Error
	case scope.LevelConstituency:
		err = db.Raw(`SELECT c.county_id, c.id AS constituency_id
            FROM constituencies c WHERE c.id = ?`, sc.ID).Scan(&rows).Error
	case scope.LevelWard:
		err = db.Raw(`SELECT c.county_id, w.constituency_id, w.id AS ward_id
            FROM wards w JOIN constituencies c ON c.id = w.constituency_id
            WHERE w.id = ?`, sc.ID).Scan(&rows).Error
	case scope.LevelPollingStation:
		err = db.Raw(`SELECT c.county_id, w.constituency_id, ps.ward_id
            FROM polling_stations ps`+stationJoins+`
            WHERE ps.id = ?`, sc.ID).Scan(&rows).Error
	default:
		return chain, false, fmt.Errorf("unsupported scope level %q", sc.Level)
	}
	if err != nil {
		return chain, false, err
	}
	if len(rows) == 0 {
		return chain, false, nil
	}
	return rows[0], true, nil
}
