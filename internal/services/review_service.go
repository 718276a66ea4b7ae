package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

// ReviewService moves submissions through their review states. Only a
// verified primary submission counts in an aggregate.
type ReviewService struct {
	submissions postgres.SubmissionRepository
	metrics     *metrics.Metrics
	log         *log.Logger
}

// NewReviewService creates a review service.
func NewReviewService(submissions postgres.SubmissionRepository, m *metrics.Metrics) *ReviewService {
	return &ReviewService{
		submissions: submissions,
		metrics:     m,
		log:         logger.Service("review"),
	}
}

// SetStatus applies a reviewer decision and returns the updated submission.
func (s *ReviewService) SetStatus(ctx context.Context, caller scope.Caller, id uuid.UUID, status string) (*submission.Submission, error) {
	if caller.Role != scope.RoleAdmin {
		return nil, submission.ErrForbidden
	}
	next, err := submission.ParseStatus(status)
	if err != nil {
		return nil, validation.Errorf("status", "must be one of pending, verified, flagged, rejected")
	}

	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.Status.CanTransitionTo(next) {
		return nil, submission.ErrInvalidTransition
	}
	if next == submission.StatusVerified && sub.Result == nil {
		return nil, submission.ErrNoResult
	}

	var verifiedAt *time.Time
	if next == submission.StatusVerified {
		now := nowUTC()
		verifiedAt = &now
	}

	if err := s.submissions.UpdateStatus(ctx, sub.ID, sub.Status, next, verifiedAt); err != nil {
		return nil, err
	}

	s.metrics.RecordReview(string(next))
	s.log.Info("submission reviewed", "submission_id", sub.ID, "from", sub.Status, "to", next, "reviewer", caller.UserID)

	sub.Status = next
	sub.VerifiedAt = verifiedAt
	return sub, nil
}
