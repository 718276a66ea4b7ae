package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
)

// reported stores a submission of the given type and status with a result
// for position.
func reported(t *testing.T, db *gorm.DB, stationID uint, kind submission.Type, status submission.Status,
	position candidate.Position, counts verification.Counts) *submission.Submission {
	t.Helper()
	ctx := context.Background()

	s := submission.NewSubmission(uuid.New(), stationID, 1, kind)
	require.NoError(t, NewPostgresSubmissionRepository(db).Create(ctx, s))

	res := submission.NewResult(s.ID, position, counts)
	require.NoError(t, NewPostgresResultRepository(db).Record(ctx, res, s))

	if status != s.Status {
		require.NoError(t, db.Model(&submission.Submission{}).Where("id = ?", s.ID).Update("status", status).Error)
		s.Status = status
	}
	return s
}

func counts(registered, cast, valid, rejected int, lines ...verification.CandidateCount) verification.Counts {
	return verification.Counts{
		RegisteredVoters: registered,
		TotalVotesCast:   cast,
		ValidVotes:       valid,
		RejectedVotes:    rejected,
		Candidates:       lines,
	}
}

func line(name, party string, votes int) verification.CandidateCount {
	return verification.CandidateCount{CandidateName: name, PartyName: party, Votes: votes}
}
