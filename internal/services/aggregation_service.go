package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/results"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
)

// AggregateRequest selects a position and an area.
type AggregateRequest struct {
	Caller   scope.Caller
	Position string
	Filter   scope.Filter
}

// AggregateOutcome is the rolled-up result together with the scope it was
// actually computed for, which may be narrower than the one requested.
type AggregateOutcome struct {
	Position candidate.Position       `json:"position"`
	Results  []results.CandidateTally `json:"results"`
	Summary  results.Summary          `json:"summary"`
	Scope    scope.Scope              `json:"scope"`
}

// AggregationService answers read-only queries bounded by the caller's scope.
type AggregationService struct {
	tallies    postgres.TallyRepository
	candidates postgres.CandidateRepository
	metrics    *metrics.Metrics
	log        *log.Logger
}

// NewAggregationService creates an aggregation service.
func NewAggregationService(tallies postgres.TallyRepository, candidates postgres.CandidateRepository, m *metrics.Metrics) *AggregationService {
	return &AggregationService{
		tallies:    tallies,
		candidates: candidates,
		metrics:    m,
		log:        logger.Service("aggregation"),
	}
}

// Aggregate totals the verified primary submissions for one position inside
// the caller's scope. A requested area outside a restricted caller's bound
// is replaced by that bound.
func (s *AggregationService) Aggregate(ctx context.Context, req AggregateRequest) (*AggregateOutcome, error) {
	start := time.Now()

	position, err := parsePosition(req.Position)
	if err != nil {
		return nil, err
	}
	sc, err := s.scopeFor(req.Caller, req.Filter)
	if err != nil {
		return nil, err
	}

	area, tallies, err := s.tallies.LoadTallies(ctx, position, sc)
	if err != nil {
		return nil, err
	}
	rolled := results.Aggregate(area, tallies)

	elapsed := time.Since(start)
	s.metrics.ObserveAggregation(string(position), string(sc.Level), elapsed)
	s.log.Debug("aggregate computed",
		"position", position,
		"scope", sc.String(),
		"role", req.Caller.Role,
		"submissions", len(tallies),
		"duration", elapsed)

	return &AggregateOutcome{
		Position: position,
		Results:  rolled.Results,
		Summary:  rolled.Summary,
		Scope:    sc,
	}, nil
}

// Ballot lists the candidates standing for position inside the caller's scope.
func (s *AggregationService) Ballot(ctx context.Context, req AggregateRequest) ([]*candidate.Candidate, scope.Scope, error) {
	position, err := parsePosition(req.Position)
	if err != nil {
		return nil, scope.Scope{}, err
	}
	sc, err := s.scopeFor(req.Caller, req.Filter)
	if err != nil {
		return nil, scope.Scope{}, err
	}

	ballot, err := s.candidates.ListBallot(ctx, position, sc)
	if err != nil {
		return nil, scope.Scope{}, err
	}
	return ballot, sc, nil
}

func (s *AggregationService) scopeFor(caller scope.Caller, f scope.Filter) (scope.Scope, error) {
	sc, err := scope.Narrow(scope.Resolve(caller), f)
	if err != nil {
		return scope.Scope{}, inputError(err)
	}
	return sc, nil
}
