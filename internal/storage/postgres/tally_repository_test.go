package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/results"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/storage/testdb"
)

func TestTallyRepository_OnlyVerifiedPrimariesForPosition(t *testing.T) {
	db := testdb.Open(t)
	testdb.SeedGeography(t, db)
	repo := NewPostgresTallyRepository(db)

	counted := reported(t, db, 1000, submission.TypePrimary, submission.StatusVerified, candidate.PositionMCA,
		counts(500, 400, 380, 20, line("X", "PX", 200), line("Y", "PY", 180)))
	reported(t, db, 1000, submission.TypePrimary, submission.StatusPending, candidate.PositionMCA, counts(500, 10, 10, 0, line("X", "PX", 10)))
	reported(t, db, 1000, submission.TypePrimary, submission.StatusFlagged, candidate.PositionMCA, counts(500, 10, 10, 0, line("X", "PX", 10)))
	reported(t, db, 1000, submission.TypeBackup, submission.StatusVerified, candidate.PositionMCA, counts(500, 10, 10, 0, line("X", "PX", 10)))
	reported(t, db, 1000, submission.TypePrimary, submission.StatusVerified, candidate.PositionMP, counts(500, 10, 10, 0, line("Z", "PZ", 10)))

	area, tallies, err := repo.LoadTallies(context.Background(), candidate.PositionMCA, scope.National())
	require.NoError(t, err)

	assert.Equal(t, results.AreaTotals{TotalStations: 3, RegisteredVoters: 1500}, area)
	require.Len(t, tallies, 1)
	assert.Equal(t, counted.ID, tallies[0].SubmissionID)
	assert.EqualValues(t, 1000, tallies[0].PollingStationID)
	assert.EqualValues(t, 400, tallies[0].TotalVotesCast)
	assert.Equal(t, []results.CandidateVotes{
		{CandidateName: "X", PartyName: "PX", Votes: 200},
		{CandidateName: "Y", PartyName: "PY", Votes: 180},
	}, tallies[0].Candidates)
}

func TestTallyRepository_ScopeLevels(t *testing.T) {
	db := testdb.Open(t)
	testdb.SeedGeography(t, db)
	repo := NewPostgresTallyRepository(db)

	for _, station := range []uint{1000, 1010, 1100} {
		reported(t, db, station, submission.TypePrimary, submission.StatusVerified, candidate.PositionGovernor,
			counts(500, 100, 100, 0, line("G", "PG", 100)))
	}

	cases := []struct {
		name     string
		scope    scope.Scope
		stations int64
		reports  int
	}{
		{"national", scope.National(), 3, 3},
		{"county", scope.At(scope.LevelCounty, 1), 3, 3},
		{"other county", scope.At(scope.LevelCounty, 2), 0, 0},
		{"constituency", scope.At(scope.LevelConstituency, 10), 2, 2},
		{"ward", scope.At(scope.LevelWard, 110), 1, 1},
		{"station", scope.At(scope.LevelPollingStation, 1010), 1, 1},
		{"denied", scope.Deny(), 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			area, tallies, err := repo.LoadTallies(context.Background(), candidate.PositionGovernor, tc.scope)
			require.NoError(t, err)
			assert.Equal(t, tc.stations, area.TotalStations)
			assert.Equal(t, tc.stations*500, area.RegisteredVoters)
			assert.Len(t, tallies, tc.reports)
		})
	}
}

func TestTallyRepository_EmptyArea(t *testing.T) {
	db := testdb.Open(t)

	area, tallies, err := NewPostgresTallyRepository(db).LoadTallies(context.Background(), candidate.PositionPresident, scope.National())
	require.NoError(t, err)
	assert.Zero(t, area.TotalStations)
	assert.Zero(t, area.RegisteredVoters)
	assert.Empty(t, tallies)
}

func TestScopeCondition(t *testing.T) {
	cond, args := scopeCondition(scope.Deny())
	assert.Equal(t, "1 = 0", cond)
	assert.Empty(t, args)

	cond, args = scopeCondition(scope.At(scope.LevelConstituency, 42))
	assert.Equal(t, "w.constituency_id = ?", cond)
	assert.Equal(t, []any{uint(42)}, args)

	cond, _ = scopeCondition(scope.National())
	assert.Equal(t, "1 = 1", cond)
}
