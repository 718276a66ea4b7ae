package results

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tally(station uint, registered, cast, valid, rejected int64, lines ...CandidateVotes) SubmissionTally {
	return SubmissionTally{
		SubmissionID:     uuid.New(),
		PollingStationID: station,
		RegisteredVoters: registered,
		TotalVotesCast:   cast,
		ValidVotes:       valid,
		RejectedVotes:    rejected,
		Candidates:       lines,
	}
}

func TestAggregate_SingleStationWard(t *testing.T) {
	area := AreaTotals{TotalStations: 1, RegisteredVoters: 500}
	got := Aggregate(area, []SubmissionTally{
		tally(1, 500, 400, 380, 20,
			CandidateVotes{CandidateName: "X", PartyName: "PX", Votes: 200},
			CandidateVotes{CandidateName: "Y", PartyName: "PY", Votes: 180}),
	})

	require.Len(t, got.Results, 2)
	assert.Equal(t, CandidateTally{CandidateName: "X", PartyName: "PX", TotalVotes: 200, Percentage: 52.63, PollingStationsCount: 1}, got.Results[0])
	assert.Equal(t, CandidateTally{CandidateName: "Y", PartyName: "PY", TotalVotes: 180, Percentage: 47.37, PollingStationsCount: 1}, got.Results[1])

	assert.Equal(t, 80.0, got.Summary.TurnoutPercentage)
	assert.Equal(t, 100.0, got.Summary.ReportingPercentage)
	assert.Equal(t, int64(400), got.Summary.TotalVotesCast)
	assert.Equal(t, int64(20), got.Summary.RejectedVotes)
	assert.Equal(t, int64(500), got.Summary.RegisteredVoters)
	assert.Equal(t, int64(1), got.Summary.StationsReported)
}

func TestAggregate_ReportingPercentage(t *testing.T) {
	area := AreaTotals{TotalStations: 10, RegisteredVoters: 10000}
	line := func(v int64) CandidateVotes { return CandidateVotes{CandidateName: "A", Votes: v} }

	got := Aggregate(area, []SubmissionTally{
		tally(1, 1000, 500, 500, 0, line(500)),
		tally(2, 1000, 600, 600, 0, line(600)),
		tally(3, 1000, 700, 700, 0, line(700)),
	})

	assert.Equal(t, int64(3), got.Summary.StationsReported)
	assert.Equal(t, 30.0, got.Summary.ReportingPercentage)
	// Turnout is measured against reporting stations only.
	assert.Equal(t, int64(3000), got.Summary.ReportedRegisteredVoters)
	assert.Equal(t, 60.0, got.Summary.TurnoutPercentage)
	assert.Equal(t, int64(10000), got.Summary.RegisteredVoters)
	assert.Equal(t, int64(10), got.Summary.TotalStations)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 3, got.Results[0].PollingStationsCount)
}

func TestAggregate_NoReports(t *testing.T) {
	got := Aggregate(AreaTotals{TotalStations: 4, RegisteredVoters: 2400}, nil)

	assert.NotNil(t, got.Results)
	assert.Empty(t, got.Results)
	assert.Equal(t, int64(4), got.Summary.TotalStations)
	assert.Equal(t, int64(2400), got.Summary.RegisteredVoters)
	assert.Equal(t, int64(0), got.Summary.StationsReported)
	assert.Equal(t, 0.0, got.Summary.TurnoutPercentage)
	assert.Equal(t, 0.0, got.Summary.ReportingPercentage)
}

func TestAggregate_EmptyArea(t *testing.T) {
	got := Aggregate(AreaTotals{}, nil)
	assert.Empty(t, got.Results)
	assert.Equal(t, Summary{}, got.Summary)
}

func TestAggregate_TiesKeepFirstSeenOrder(t *testing.T) {
	input := []SubmissionTally{
		tally(1, 100, 60, 60, 0,
			CandidateVotes{CandidateName: "Zed", Votes: 10},
			CandidateVotes{CandidateName: "Amos", Votes: 30},
			CandidateVotes{CandidateName: "Mary", Votes: 20}),
		tally(2, 100, 40, 40, 0,
			CandidateVotes{CandidateName: "Mary", Votes: 10},
			CandidateVotes{CandidateName: "Zed", Votes: 30}),
	}

	for range 20 {
		got := Aggregate(AreaTotals{TotalStations: 2, RegisteredVoters: 200}, input)
		require.Len(t, got.Results, 3)
		assert.Equal(t, "Zed", got.Results[0].CandidateName)
		assert.Equal(t, "Amos", got.Results[1].CandidateName)
		assert.Equal(t, "Mary", got.Results[2].CandidateName)
		assert.Equal(t, int64(40), got.Results[0].TotalVotes)
		assert.Equal(t, int64(30), got.Results[1].TotalVotes)
		assert.Equal(t, int64(30), got.Results[2].TotalVotes)
	}
}

func TestAggregate_GroupsByNameAndParty(t *testing.T) {
	got := Aggregate(AreaTotals{TotalStations: 2, RegisteredVoters: 200}, []SubmissionTally{
		tally(1, 100, 50, 50, 0,
			CandidateVotes{CandidateName: "Otieno", PartyName: "A", Votes: 30},
			CandidateVotes{CandidateName: "Otieno", PartyName: "B", Votes: 20}),
		tally(2, 100, 50, 50, 0,
			CandidateVotes{CandidateName: "Otieno", PartyName: "A", Votes: 50}),
	})

	require.Len(t, got.Results, 2)
	assert.Equal(t, "A", got.Results[0].PartyName)
	assert.Equal(t, int64(80), got.Results[0].TotalVotes)
	assert.Equal(t, 2, got.Results[0].PollingStationsCount)
	assert.Equal(t, 80.0, got.Results[0].Percentage)
	assert.Equal(t, 1, got.Results[1].PollingStationsCount)
}

func TestAggregate_SummaryCountedPerSubmission(t *testing.T) {
	// Two candidate lines must not double the submission-level counters.
	got := Aggregate(AreaTotals{TotalStations: 5, RegisteredVoters: 5000}, []SubmissionTally{
		tally(1, 1000, 800, 790, 10,
			CandidateVotes{CandidateName: "A", Votes: 400},
			CandidateVotes{CandidateName: "B", Votes: 390}),
		tally(1, 1000, 800, 790, 10,
			CandidateVotes{CandidateName: "A", Votes: 400},
			CandidateVotes{CandidateName: "B", Votes: 390}),
	})

	assert.Equal(t, int64(1600), got.Summary.TotalVotesCast)
	assert.Equal(t, int64(1580), got.Summary.ValidVotes)
	assert.Equal(t, int64(20), got.Summary.RejectedVotes)
	assert.Equal(t, int64(1), got.Summary.StationsReported)
	assert.Equal(t, 20.0, got.Summary.ReportingPercentage)
	assert.Equal(t, 1, got.Results[0].PollingStationsCount)
}

func TestAggregate_ZeroVoteLineStillListed(t *testing.T) {
	got := Aggregate(AreaTotals{TotalStations: 1, RegisteredVoters: 10}, []SubmissionTally{
		tally(1, 10, 5, 5, 0,
			CandidateVotes{CandidateName: "A", Votes: 5},
			CandidateVotes{CandidateName: "B", Votes: 0}),
	})

	require.Len(t, got.Results, 2)
	assert.Equal(t, 0.0, got.Results[1].Percentage)
}
