package verification

import "fmt"

// CandidateCount is one line of a declared result.
type CandidateCount struct {
	CandidateName string `json:"candidate_name"`
	PartyName     string `json:"party_name,omitempty"`
	Votes         int    `json:"votes"`
}

// Counts is the numeric payload declared on a results form.
type Counts struct {
	RegisteredVoters int              `json:"registered_voters"`
	TotalVotesCast   int              `json:"total_votes_cast"`
	ValidVotes       int              `json:"valid_votes"`
	RejectedVotes    int              `json:"rejected_votes"`
	Candidates       []CandidateCount `json:"candidate_votes"`
}

// CandidateTotal sums the votes of every candidate line.
func (c Counts) CandidateTotal() int {
	total := 0
	for _, cv := range c.Candidates {
		total += cv.Votes
	}
	return total
}

// ArithmeticVerdict lists every inconsistency found in a declared result.
type ArithmeticVerdict struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateArithmetic checks the internal consistency of counts. All checks
// run; the verdict is valid only when none of them produced an error.
func ValidateArithmetic(counts Counts) ArithmeticVerdict {
	errs := make([]string, 0)

	if counts.TotalVotesCast > counts.RegisteredVoters {
		errs = append(errs, fmt.Sprintf(
			"total votes cast (%d) exceeds registered voters (%d)",
			counts.TotalVotesCast, counts.RegisteredVoters))
	}

	if sum := counts.ValidVotes + counts.RejectedVotes; sum != counts.TotalVotesCast {
		errs = append(errs, fmt.Sprintf(
			"valid votes + rejected votes (%d) does not equal total votes cast (%d)",
			sum, counts.TotalVotesCast))
	}

	if sum := counts.CandidateTotal(); sum != counts.ValidVotes {
		errs = append(errs, fmt.Sprintf(
			"sum of candidate votes (%d) does not equal valid votes (%d)",
			sum, counts.ValidVotes))
	}

	fields := []struct {
		name  string
		value int
	}{
		{"registered_voters", counts.RegisteredVoters},
		{"total_votes_cast", counts.TotalVotesCast},
		{"valid_votes", counts.ValidVotes},
		{"rejected_votes", counts.RejectedVotes},
	}
	for _, f := range fields {
		if f.value < 0 {
			errs = append(errs, fmt.Sprintf("%s cannot be negative (%d)", f.name, f.value))
		}
	}
	for _, cv := range counts.Candidates {
		if cv.Votes < 0 {
			errs = append(errs, fmt.Sprintf("votes for %s cannot be negative (%d)", cv.CandidateName, cv.Votes))
		}
	}

	return ArithmeticVerdict{Valid: len(errs) == 0, Errors: errs}
}
