package migrations

import (
	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/location"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
)

// AllModels returns a slice of all models for migration, parents first.
func AllModels() []any {
	return []any{
		&location.County{},
		&location.Constituency{},
		&location.Ward{},
		&location.PollingStation{},
		&candidate.Candidate{},
		&submission.Submission{},
		&submission.Photo{},
		&submission.Result{},
		&submission.CandidateVote{},
	}
}

// tablesInDropOrder lists the tables created by AllModels, children first.
var tablesInDropOrder = []string{
	"candidate_votes",
	"results",
	"submission_photos",
	"submissions",
	"candidates",
	"polling_stations",
	"wards",
	"constituencies",
	"counties",
}
