package verification

import "fmt"

// Anomaly kinds, in the order the checks run.
const (
	AnomalyHighTurnout   = "high_turnout"
	AnomalyLowTurnout    = "low_turnout"
	AnomalyHighRejection = "high_rejection"
	AnomalyLandslide     = "landslide"
)

// AnomalyReport holds the human-readable flags raised for a result. Kinds
// is parallel to Flags.
type AnomalyReport struct {
	HasAnomalies bool     `json:"has_anomalies"`
	Flags        []string `json:"flags"`
	Kinds        []string `json:"-"`
}

// DetectAnomalies runs the statistical heuristics over counts. Checks whose
// denominator is zero are skipped.
func (c Config) DetectAnomalies(counts Counts) AnomalyReport {
	flags := make([]string, 0)
	kinds := make([]string, 0)

	if counts.RegisteredVoters > 0 {
		turnout := float64(counts.TotalVotesCast) / float64(counts.RegisteredVoters)
		switch {
		case turnout > c.HighTurnout:
			flags = append(flags, fmt.Sprintf("unusually high turnout: %.1f%%", turnout*100))
			kinds = append(kinds, AnomalyHighTurnout)
		case turnout < c.LowTurnout:
			flags = append(flags, fmt.Sprintf("unusually low turnout: %.1f%%", turnout*100))
			kinds = append(kinds, AnomalyLowTurnout)
		}
	}

	if counts.TotalVotesCast > 0 {
		rejection := float64(counts.RejectedVotes) / float64(counts.TotalVotesCast)
		if rejection > c.MaxRejectionRate {
			flags = append(flags, fmt.Sprintf("high rejection rate: %.1f%%", rejection*100))
			kinds = append(kinds, AnomalyHighRejection)
		}
	}

	if counts.ValidVotes > 0 && len(counts.Candidates) > 0 {
		leader := counts.Candidates[0]
		for _, cv := range counts.Candidates[1:] {
			if cv.Votes > leader.Votes {
				leader = cv
			}
		}
		share := float64(leader.Votes) / float64(counts.ValidVotes)
		if share > c.LandslideShare {
			flags = append(flags, fmt.Sprintf("landslide: %s received %.1f%% of valid votes", leader.CandidateName, share*100))
			kinds = append(kinds, AnomalyLandslide)
		}
	}

	return AnomalyReport{HasAnomalies: len(flags) > 0, Flags: flags, Kinds: kinds}
}
