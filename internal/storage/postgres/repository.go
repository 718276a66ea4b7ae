package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/location"
	"github.com/gravadigital/tallywatch-api/internal/domain/results"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
)

// LocationRepository reads the electoral geography.
type LocationRepository interface {
	GetPollingStation(ctx context.Context, id uint) (*location.PollingStation, error)
}

// CandidateRepository reads candidates and ballots.
type CandidateRepository interface {
	GetByID(ctx context.Context, id uint) (*candidate.Candidate, error)
	ListBallot(ctx context.Context, position candidate.Position, sc scope.Scope) ([]*candidate.Candidate, error)
}

// SubmissionRepository persists submissions and their photos.
type SubmissionRepository interface {
	Create(ctx context.Context, s *submission.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*submission.Submission, error)
	HasPrimary(ctx context.Context, userID uuid.UUID, stationID, candidateID uint) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to submission.Status, verifiedAt *time.Time) error
}

// ResultRepository persists results together with the verification outcome
// written back to their submission.
type ResultRepository interface {
	Record(ctx context.Context, r *submission.Result, s *submission.Submission) error
	ListIndependent(ctx context.Context, s *submission.Submission, position candidate.Position) ([]*submission.Result, error)
}

// TallyRepository loads everything an aggregation needs from one snapshot.
type TallyRepository interface {
	LoadTallies(ctx context.Context, position candidate.Position, sc scope.Scope) (results.AreaTotals, []results.SubmissionTally, error)
}
