package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// PostgresResultRepository implements ResultRepository using GORM
type PostgresResultRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresResultRepository creates a new PostgreSQL result repository
func NewPostgresResultRepository(db *gorm.DB) *PostgresResultRepository {
	return &PostgresResultRepository{
		db:  db,
		log: logger.Repository("result"),
	}
}

// Record stores the result with its candidate lines and writes the
// recomputed verification fields of s in the same transaction. Status is
// never touched, and a submission whose review is over is refused.
func (r *PostgresResultRepository) Record(ctx context.Context, res *submission.Result, s *submission.Submission) error {
	r.log.Debug("recording result", "submission_id", s.ID, "position", res.Position, "lines", len(res.CandidateVotes))

	if err := res.Validate(); err != nil {
		r.log.Error("result validation failed", "error", err, "submission_id", s.ID)
		return fmt.Errorf("result validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return submission.ErrResultExists
			}
			return fmt.Errorf("failed to create result: %w", err)
		}

		updates := map[string]any{
			"confidence_score": s.ConfidenceScore,
			"historical_match": s.HistoricalMatch,
			"has_discrepancy":  s.HasDiscrepancy,
			"flagged_reason":   s.FlaggedReason,
		}
		reviewable := []submission.Status{submission.StatusPending, submission.StatusFlagged}
		update := tx.Model(&submission.Submission{}).Where("id = ? AND status IN ?", s.ID, reviewable).Updates(updates)
		if update.Error != nil {
			return fmt.Errorf("failed to update submission: %w", update.Error)
		}
		if update.RowsAffected == 0 {
			return submission.ErrReviewClosed
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, submission.ErrResultExists) || errors.Is(err, submission.ErrReviewClosed) {
			r.log.Warn("result refused", "submission_id", s.ID, "error", err)
		} else {
			r.log.Error("failed to record result", "submission_id", s.ID, "error", err)
		}
		return err
	}

	r.log.Info("result recorded successfully", "result_id", res.ID, "submission_id", s.ID, "has_discrepancy", s.HasDiscrepancy)
	return nil
}

// ListIndependent returns results for the same station and position that
// were submitted by somebody else and not rejected.
func (r *PostgresResultRepository) ListIndependent(ctx context.Context, s *submission.Submission, position candidate.Position) ([]*submission.Result, error) {
	var out []*submission.Result
	err := r.db.WithContext(ctx).
		Joins("JOIN submissions s ON s.id = results.submission_id").
		Where("s.polling_station_id = ? AND s.user_id <> ? AND s.status <> ? AND results.position = ?",
			s.PollingStationID, s.UserID, submission.StatusRejected, position).
		Order("s.submitted_at").
		Find(&out).Error
	if err != nil {
		r.log.Error("failed to list independent results", "submission_id", s.ID, "error", err)
		return nil, fmt.Errorf("failed to list independent results: %w", err)
	}

	r.log.Debug("independent results found", "submission_id", s.ID, "count", len(out))
	return out, nil
}
