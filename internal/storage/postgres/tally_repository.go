package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/results"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/logger"
)

// PostgresTallyRepository implements TallyRepository using GORM
type PostgresTallyRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresTallyRepository creates a new PostgreSQL tally repository
func NewPostgresTallyRepository(db *gorm.DB) *PostgresTallyRepository {
	return &PostgresTallyRepository{
		db:  db,
		log: logger.Repository("tally"),
	}
}

type tallyRow struct {
	SubmissionID     uuid.UUID
	ResultID         uuid.UUID
	PollingStationID uint
	RegisteredVoters int64
	TotalVotesCast   int64
	ValidVotes       int64
	RejectedVotes    int64
}

type candidateVoteRow struct {
	ResultID      uuid.UUID
	CandidateName string
	PartyName     string
	Votes         int64
}

// qualifyingFrom selects verified primary submissions for one position
// whose station lies in scope.
const qualifyingFrom = `
        FROM submissions s
        JOIN results r ON r.submission_id = s.id
        JOIN polling_stations ps ON ps.id = s.polling_station_id` + stationJoins + `
        WHERE s.status = ? AND s.submission_type = ? AND r.position = ? AND `

// LoadTallies reads the area totals and every qualifying submission inside
// one read-only transaction, so the station count and the reports always
// describe the same snapshot. On postgres the snapshot is REPEATABLE READ.
func (r *PostgresTallyRepository) LoadTallies(ctx context.Context, position candidate.Position, sc scope.Scope) (results.AreaTotals, []results.SubmissionTally, error) {
	r.log.Debug("loading tallies", "position", position, "scope", sc.String())

	var area results.AreaTotals
	var tallies []results.SubmissionTally

	cond, condArgs := scopeCondition(sc)
	qualifyingArgs := append([]any{submission.StatusVerified, submission.TypePrimary, position}, condArgs...)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
            SELECT COUNT(ps.id) AS total_stations, COALESCE(SUM(ps.registered_voters), 0) AS registered_voters
            FROM polling_stations ps`+stationJoins+`
            WHERE `+cond, condArgs...).Scan(&area).Error
		if err != nil {
			return fmt.Errorf("failed to load area totals: %w", err)
		}

		var rows []tallyRow
		err = tx.Raw(`
            SELECT s.id AS submission_id, r.id AS result_id, s.polling_station_id,
                   r.registered_voters, r.total_votes_cast, r.valid_votes, r.rejected_votes`+
			qualifyingFrom+cond+`
            ORDER BY s.submitted_at, s.id`, qualifyingArgs...).Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load submissions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		var lines []candidateVoteRow
		err = tx.Raw(`
            SELECT cv.result_id, cv.candidate_name, cv.party_name, cv.votes
            FROM candidate_votes cv
            WHERE cv.result_id IN (SELECT r.id`+qualifyingFrom+cond+`)
            ORDER BY cv.id`, qualifyingArgs...).Scan(&lines).Error
		if err != nil {
			return fmt.Errorf("failed to load candidate votes: %w", err)
		}

		tallies = assembleTallies(rows, lines)
		return nil
	}, snapshotOptions(r.db))
	if err != nil {
		r.log.Error("failed to load tallies", "position", position, "scope", sc.String(), "error", err)
		return results.AreaTotals{}, nil, err
	}

	r.log.Debug("tallies loaded", "position", position, "stations", area.TotalStations, "submissions", len(tallies))
	return area, tallies, nil
}

func assembleTallies(rows []tallyRow, lines []candidateVoteRow) []results.SubmissionTally {
	byResult := make(map[uuid.UUID][]results.CandidateVotes, len(rows))
	for _, l := range lines {
		byResult[l.ResultID] = append(byResult[l.ResultID], results.CandidateVotes{
			CandidateName: l.CandidateName,
			PartyName:     l.PartyName,
			Votes:         l.Votes,
		})
	}

	tallies := make([]results.SubmissionTally, 0, len(rows))
	for _, row := range rows {
		tallies = append(tallies, results.SubmissionTally{
			SubmissionID:     row.SubmissionID,
			PollingStationID: row.PollingStationID,
			RegisteredVoters: row.RegisteredVoters,
			TotalVotesCast:   row.TotalVotesCast,
			ValidVotes:       row.ValidVotes,
			RejectedVotes:    row.RejectedVotes,
			Candidates:       byResult[row.ResultID],
		})
	}
	return tallies
}

// snapshotOptions returns the transaction options for aggregation reads.
// SQLite transactions are already serializable and reject isolation hints.
func snapshotOptions(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}
