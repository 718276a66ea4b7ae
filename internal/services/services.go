// Package services orchestrates the verification components, the
// repositories and the photo store behind each operation of the API.
package services

import (
	"errors"
	"time"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/storage/objectstore"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

// Repositories is the storage the services depend on.
type Repositories interface {
	Locations() postgres.LocationRepository
	Candidates() postgres.CandidateRepository
	Submissions() postgres.SubmissionRepository
	Results() postgres.ResultRepository
	Tallies() postgres.TallyRepository
}

// UploadLimits bounds the photos accepted with one submission.
type UploadLimits struct {
	MaxPhotos   int
	MaxFileSize int64
}

// Services bundles every service built from one set of dependencies.
type Services struct {
	Submissions  *SubmissionService
	Results      *ResultService
	Reviews      *ReviewService
	Aggregations *AggregationService
}

// New wires the services.
func New(repos Repositories, photos objectstore.PhotoStore, verify verification.Config, limits UploadLimits, m *metrics.Metrics) *Services {
	return &Services{
		Submissions:  NewSubmissionService(repos.Locations(), repos.Candidates(), repos.Submissions(), photos, verify, limits, m),
		Results:      NewResultService(repos.Submissions(), repos.Results(), verify, m),
		Reviews:      NewReviewService(repos.Submissions(), m),
		Aggregations: NewAggregationService(repos.Tallies(), repos.Candidates(), m),
	}
}

func parsePosition(value string) (candidate.Position, error) {
	p, err := candidate.ParsePosition(value)
	if err != nil {
		return "", validation.Errorf("position", "must be one of president, governor, senator, women_rep, mp, mca")
	}
	return p, nil
}

func inputError(err error) error {
	var v *validation.Error
	if errors.As(err, &v) {
		return err
	}
	return &validation.Error{Message: err.Error()}
}

var nowUTC = func() time.Time { return time.Now().UTC() }
