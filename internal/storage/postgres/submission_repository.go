package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// PostgresSubmissionRepository implements SubmissionRepository using GORM
type PostgresSubmissionRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresSubmissionRepository creates a new PostgreSQL submission repository
func NewPostgresSubmissionRepository(db *gorm.DB) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{
		db:  db,
		log: logger.Repository("submission"),
	}
}

// Create inserts the submission and its photos in one statement batch. A
// second primary for the same user, station and candidate is reported as
// ErrDuplicatePrimary whether it is caught by the caller's pre-check or by
// the unique index.
func (r *PostgresSubmissionRepository) Create(ctx context.Context, s *submission.Submission) error {
	r.log.Debug("creating new submission", "submission_id", s.ID, "polling_station_id", s.PollingStationID, "type", s.SubmissionType)

	if err := s.Validate(); err != nil {
		r.log.Error("submission validation failed", "error", err, "submission_id", s.ID)
		return fmt.Errorf("submission validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && s.SubmissionType == submission.TypePrimary {
			r.log.Warn("duplicate primary submission rejected by index", "user_id", s.UserID, "polling_station_id", s.PollingStationID, "candidate_id", s.CandidateID)
			return submission.ErrDuplicatePrimary
		}
		r.log.Error("failed to create submission", "error", err, "submission_id", s.ID)
		return fmt.Errorf("failed to create submission: %w", err)
	}

	r.log.Info("submission created successfully", "submission_id", s.ID, "photos", len(s.Photos))
	return nil
}

func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*submission.Submission, error) {
	r.log.Debug("retrieving submission by ID", "submission_id", id)

	var s submission.Submission
	err := r.db.WithContext(ctx).
		Preload("Photos").
		Preload("Result.CandidateVotes", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("submission not found", "submission_id", id)
			return nil, submission.ErrSubmissionNotFound
		}
		r.log.Error("failed to retrieve submission", "submission_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve submission: %w", err)
	}

	return &s, nil
}

func (r *PostgresSubmissionRepository) HasPrimary(ctx context.Context, userID uuid.UUID, stationID, candidateID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&submission.Submission{}).
		Where("user_id = ? AND polling_station_id = ? AND candidate_id = ? AND submission_type = ?",
			userID, stationID, candidateID, submission.TypePrimary).
		Count(&count).Error
	if err != nil {
		r.log.Error("failed to check for primary submission", "user_id", userID, "polling_station_id", stationID, "error", err)
		return false, fmt.Errorf("failed to check for primary submission: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus moves a submission from one status to another. The update is
// conditional on the current status so a concurrent review cannot be
// overwritten; losing that race reports ErrInvalidTransition.
func (r *PostgresSubmissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to submission.Status, verifiedAt *time.Time) error {
	r.log.Debug("updating submission status", "submission_id", id, "from", from, "to", to)

	updates := map[string]any{"status": to}
	if verifiedAt != nil {
		updates["verified_at"] = *verifiedAt
	}

	result := r.db.WithContext(ctx).Model(&submission.Submission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		r.log.Error("failed to update submission status", "submission_id", id, "error", result.Error)
		return fmt.Errorf("failed to update submission status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("submission status changed concurrently", "submission_id", id, "expected", from)
		return submission.ErrInvalidTransition
	}

	r.log.Info("submission status updated", "submission_id", id, "status", to)
	return nil
}
