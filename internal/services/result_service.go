package services

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

// RecordRequest carries the counts declared on a results form.
type RecordRequest struct {
	Caller       scope.Caller
	SubmissionID uuid.UUID
	Position     string
	Counts       verification.Counts
}

// RecordOutcome is the verification verdict returned to the submitter.
// Invalid arithmetic is reported here, never as an error.
type RecordOutcome struct {
	ResultID        uuid.UUID `json:"result_id"`
	Valid           bool      `json:"valid"`
	Errors          []string  `json:"errors"`
	Anomalies       []string  `json:"anomalies"`
	HistoricalMatch bool      `json:"historical_match"`
	ConfidenceScore int       `json:"confidence_score"`
}

// ResultService attaches vote counts to submissions.
type ResultService struct {
	submissions postgres.SubmissionRepository
	results     postgres.ResultRepository
	verify      verification.Config
	metrics     *metrics.Metrics
	log         *log.Logger
}

// NewResultService creates a result intake service.
func NewResultService(submissions postgres.SubmissionRepository, results postgres.ResultRepository, verify verification.Config, m *metrics.Metrics) *ResultService {
	return &ResultService{
		submissions: submissions,
		results:     results,
		verify:      verify,
		metrics:     m,
		log:         logger.Service("result"),
	}
}

// Record validates and stores the counts of one submission, then rescores
// the submission with every signal now known. The submission status is left
// for a reviewer.
func (s *ResultService) Record(ctx context.Context, req RecordRequest) (*RecordOutcome, error) {
	position, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	sub, err := s.submissions.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}
	if req.Caller.Role != scope.RoleAdmin && req.Caller.UserID != sub.UserID {
		return nil, submission.ErrForbidden
	}
	if sub.Result != nil {
		return nil, submission.ErrResultExists
	}
	if sub.Status.Final() {
		return nil, submission.ErrReviewClosed
	}

	verdict := verification.ValidateArithmetic(req.Counts)
	anomalies := s.verify.DetectAnomalies(req.Counts)

	res := submission.NewResult(sub.ID, position, req.Counts)
	res.ValidationErrors = verdict.Errors
	res.AnomalyFlags = anomalies.Flags

	independent, err := s.results.ListIndependent(ctx, sub, position)
	if err != nil {
		return nil, err
	}
	for _, other := range independent {
		if res.Corroborates(other) {
			sub.HistoricalMatch = true
			break
		}
	}

	sub.ConfidenceScore = verification.Score(verification.Signals{
		Location:          storedLocation(sub),
		HasRequiredPhotos: sub.HasRequiredPhotos,
		PhotoCount:        sub.PhotoCount,
		ArithmeticValid:   verdict.Valid,
		CapturedAt:        sub.CapturedAt,
		SubmittedAt:       sub.SubmittedAt,
		HistoricalMatch:   sub.HistoricalMatch,
	})
	sub.HasDiscrepancy = !verdict.Valid || anomalies.HasAnomalies
	sub.FlaggedReason = flaggedReason(verdict.Errors, anomalies.Flags)

	if err := s.results.Record(ctx, res, sub); err != nil {
		return nil, err
	}

	s.metrics.RecordResult(verdict.Valid, anomalies.Kinds, sub.ConfidenceScore)
	if sub.HasDiscrepancy {
		s.log.Warn("result has discrepancies",
			"submission_id", sub.ID,
			"errors", len(verdict.Errors),
			"anomalies", len(anomalies.Flags))
	}
	s.log.Info("result recorded",
		"submission_id", sub.ID,
		"position", position,
		"valid", verdict.Valid,
		"historical_match", sub.HistoricalMatch,
		"confidence_score", sub.ConfidenceScore)

	return &RecordOutcome{
		ResultID:        res.ID,
		Valid:           verdict.Valid,
		Errors:          verdict.Errors,
		Anomalies:       anomalies.Flags,
		HistoricalMatch: sub.HistoricalMatch,
		ConfidenceScore: sub.ConfidenceScore,
	}, nil
}

func (s *ResultService) validate(req RecordRequest) (candidate.Position, error) {
	if req.SubmissionID == uuid.Nil {
		return "", validation.Errorf("submission_id", "is required")
	}
	position, err := parsePosition(req.Position)
	if err != nil {
		return "", err
	}
	for i, cv := range req.Counts.Candidates {
		if strings.TrimSpace(cv.CandidateName) == "" {
			return "", validation.Errorf("candidate_votes", "line %d has no candidate_name", i)
		}
	}
	return position, nil
}

// storedLocation rebuilds the location check persisted at intake.
func storedLocation(sub *submission.Submission) verification.LocationCheck {
	if sub.DistanceMeters == nil {
		return verification.LocationCheck{}
	}
	return verification.LocationCheck{
		Checked:        true,
		Verified:       sub.LocationVerified,
		DistanceMeters: *sub.DistanceMeters,
	}
}

func flaggedReason(errs, flags []string) *string {
	reasons := make([]string, 0, len(errs)+len(flags))
	reasons = append(reasons, errs...)
	reasons = append(reasons, flags...)
	if len(reasons) == 0 {
		return nil
	}
	joined := strings.Join(reasons, "; ")
	return &joined
}
