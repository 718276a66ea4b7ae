// Package results rolls verified primary submissions up into candidate
// tallies for one position and one geographic scope.
//
// Two denominators coexist in a Summary and both are intentional:
// RegisteredVoters and TotalStations always describe the whole area,
// while TurnoutPercentage is computed against the registered voters of the
// stations that have reported only. Dashboards rely on both readings.
package results

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// AreaTotals describes every polling station inside the scope, reporting
// or not.
type AreaTotals struct {
	TotalStations    int64 `json:"total_stations"`
	RegisteredVoters int64 `json:"registered_voters"`
}

// CandidateVotes is one counted line of a submission's result.
type CandidateVotes struct {
	CandidateName string
	PartyName     string
	Votes         int64
}

// SubmissionTally is a verified primary submission with its result for the
// requested position.
type SubmissionTally struct {
	SubmissionID     uuid.UUID
	PollingStationID uint
	RegisteredVoters int64
	TotalVotesCast   int64
	ValidVotes       int64
	RejectedVotes    int64
	Candidates       []CandidateVotes
}

type CandidateTally struct {
	CandidateName        string  `json:"candidate_name"`
	PartyName            string  `json:"party_name"`
	TotalVotes           int64   `json:"total_votes"`
	Percentage           float64 `json:"percentage"`
	PollingStationsCount int     `json:"polling_stations_count"`
}

type Summary struct {
	TotalVotesCast    int64   `json:"total_votes_cast"`
	ValidVotes        int64   `json:"valid_votes"`
	RejectedVotes     int64   `json:"rejected_votes"`
	TurnoutPercentage float64 `json:"turnout_percentage"`

	// RegisteredVoters and TotalStations are area-wide.
	RegisteredVoters int64 `json:"registered_voters"`
	TotalStations    int64 `json:"total_stations"`

	// ReportedRegisteredVoters is the turnout denominator.
	ReportedRegisteredVoters int64   `json:"reported_registered_voters"`
	StationsReported         int64   `json:"stations_reported"`
	ReportingPercentage      float64 `json:"reporting_percentage"`
}

type Results struct {
	Results []CandidateTally `json:"results"`
	Summary Summary          `json:"summary"`
}

// Aggregate sums the tallies. Candidates are keyed by name and party,
// ordered by votes descending with ties kept in first-seen order. Only
// candidates with at least one counted line appear.
func Aggregate(area AreaTotals, tallies []SubmissionTally) *Results {
	out := &Results{
		Results: make([]CandidateTally, 0),
		Summary: Summary{
			RegisteredVoters: area.RegisteredVoters,
			TotalStations:    area.TotalStations,
		},
	}
	if len(tallies) == 0 {
		return out
	}

	type candidateKey struct{ name, party string }
	type accumulator struct {
		tally    CandidateTally
		stations map[uint]struct{}
	}

	order := make([]candidateKey, 0)
	byCandidate := make(map[candidateKey]*accumulator)
	stations := make(map[uint]struct{})
	sum := &out.Summary

	for _, t := range tallies {
		stations[t.PollingStationID] = struct{}{}

		sum.ReportedRegisteredVoters += t.RegisteredVoters
		sum.TotalVotesCast += t.TotalVotesCast
		sum.ValidVotes += t.ValidVotes
		sum.RejectedVotes += t.RejectedVotes

		for _, cv := range t.Candidates {
			key := candidateKey{cv.CandidateName, cv.PartyName}
			acc, ok := byCandidate[key]
			if !ok {
				acc = &accumulator{
					tally:    CandidateTally{CandidateName: cv.CandidateName, PartyName: cv.PartyName},
					stations: make(map[uint]struct{}),
				}
				byCandidate[key] = acc
				order = append(order, key)
			}
			acc.tally.TotalVotes += cv.Votes
			acc.stations[t.PollingStationID] = struct{}{}
		}
	}

	for _, key := range order {
		acc := byCandidate[key]
		acc.tally.PollingStationsCount = len(acc.stations)
		acc.tally.Percentage = percentage(acc.tally.TotalVotes, sum.ValidVotes)
		out.Results = append(out.Results, acc.tally)
	}

	sort.SliceStable(out.Results, func(i, j int) bool {
		return out.Results[i].TotalVotes > out.Results[j].TotalVotes
	})

	sum.StationsReported = int64(len(stations))
	sum.TurnoutPercentage = percentage(sum.TotalVotesCast, sum.ReportedRegisteredVoters)
	sum.ReportingPercentage = percentage(sum.StationsReported, sum.TotalStations)

	return out
}

// percentage returns part/whole*100 rounded to two decimals, or 0 when
// whole is not positive.
func percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
