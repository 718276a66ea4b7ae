package submission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
)

// Result is the vote-count payload attached to exactly one submission.
// Arithmetic violations are stored in ValidationErrors, never rejected.
type Result struct {
	ID               uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	SubmissionID     uuid.UUID          `json:"submission_id" gorm:"type:uuid;not null;uniqueIndex"`
	Position         candidate.Position `json:"position" gorm:"type:varchar(32);not null;index"`
	RegisteredVoters int                `json:"registered_voters" gorm:"not null"`
	TotalVotesCast   int                `json:"total_votes_cast" gorm:"not null"`
	ValidVotes       int                `json:"valid_votes" gorm:"not null"`
	RejectedVotes    int                `json:"rejected_votes" gorm:"not null"`
	ValidationErrors []string           `json:"validation_errors,omitempty" gorm:"type:jsonb;serializer:json"`
	AnomalyFlags     []string           `json:"anomaly_flags,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time          `json:"created_at" gorm:"autoCreateTime"`

	CandidateVotes []CandidateVote `json:"candidate_votes" gorm:"foreignKey:ResultID"`
}

// CandidateVote is the count one candidate received on a result form.
// PartyName is denormalized for display.
type CandidateVote struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ResultID      uuid.UUID `json:"result_id" gorm:"type:uuid;not null;index"`
	CandidateName string    `json:"candidate_name" gorm:"not null"`
	PartyName     string    `json:"party_name"`
	Votes         int       `json:"votes" gorm:"not null"`
}

// TableName overrides the table name
func (Result) TableName() string {
	return "results"
}

// TableName overrides the table name
func (CandidateVote) TableName() string {
	return "candidate_votes"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewResult builds the persisted form of counts.
func NewResult(submissionID uuid.UUID, position candidate.Position, counts verification.Counts) *Result {
	r := &Result{
		ID:               uuid.New(),
		SubmissionID:     submissionID,
		Position:         position,
		RegisteredVoters: counts.RegisteredVoters,
		TotalVotesCast:   counts.TotalVotesCast,
		ValidVotes:       counts.ValidVotes,
		RejectedVotes:    counts.RejectedVotes,
		CandidateVotes:   make([]CandidateVote, 0, len(counts.Candidates)),
	}
	for _, cv := range counts.Candidates {
		r.CandidateVotes = append(r.CandidateVotes, CandidateVote{
			ResultID:      r.ID,
			CandidateName: cv.CandidateName,
			PartyName:     cv.PartyName,
			Votes:         cv.Votes,
		})
	}
	return r
}

// Counts converts the stored result back into validator input.
func (r *Result) Counts() verification.Counts {
	counts := verification.Counts{
		RegisteredVoters: r.RegisteredVoters,
		TotalVotesCast:   r.TotalVotesCast,
		ValidVotes:       r.ValidVotes,
		RejectedVotes:    r.RejectedVotes,
		Candidates:       make([]verification.CandidateCount, 0, len(r.CandidateVotes)),
	}
	for _, cv := range r.CandidateVotes {
		counts.Candidates = append(counts.Candidates, verification.CandidateCount{
			CandidateName: cv.CandidateName,
			PartyName:     cv.PartyName,
			Votes:         cv.Votes,
		})
	}
	return counts
}

// Corroborates reports whether other declares the same totals as r.
func (r *Result) Corroborates(other *Result) bool {
	return r.TotalVotesCast == other.TotalVotesCast &&
		r.ValidVotes == other.ValidVotes &&
		r.RejectedVotes == other.RejectedVotes
}

// Validate checks the references of the result; count consistency is the
// validator's business, not a persistence error.
func (r *Result) Validate() error {
	if r.SubmissionID == uuid.Nil {
		return fmt.Errorf("submission_id is required")
	}
	if _, err := candidate.ParsePosition(string(r.Position)); err != nil {
		return err
	}
	for _, cv := range r.CandidateVotes {
		if cv.CandidateName == "" {
			return fmt.Errorf("candidate_name is required for every candidate line")
		}
	}
	return nil
}
