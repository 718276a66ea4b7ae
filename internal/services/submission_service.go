package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/tallywatch-api/internal/domain/geo"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/submission"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/storage/objectstore"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
	"github.com/gravadigital/tallywatch-api/internal/validation"
)

// PhotoUpload is one file received with a submission.
type PhotoUpload struct {
	PhotoType   string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// SubmitRequest is a validated submission intake.
type SubmitRequest struct {
	Caller           scope.Caller
	PollingStationID uint
	CandidateID      uint
	SubmissionType   submission.Type
	SubmittedLat     *float64
	SubmittedLng     *float64
	DeviceID         string
	CapturedAt       *time.Time
	Photos           []PhotoUpload
}

// SubmitOutcome is returned to the submitter.
type SubmitOutcome struct {
	SubmissionID     uuid.UUID `json:"submission_id"`
	LocationVerified bool      `json:"location_verified"`
	LocationChecked  bool      `json:"location_checked"`
	DistanceMeters   *int      `json:"distance_meters"`
	ConfidenceScore  int       `json:"confidence_score"`
	PhotoCount       int       `json:"photo_count"`
	Status           string    `json:"status"`
}

// SubmissionService handles submission intake.
type SubmissionService struct {
	stations    postgres.LocationRepository
	candidates  postgres.CandidateRepository
	submissions postgres.SubmissionRepository
	photos      objectstore.PhotoStore
	verify      verification.Config
	limits      UploadLimits
	metrics     *metrics.Metrics
	log         *log.Logger
}

// NewSubmissionService creates a submission intake service.
func NewSubmissionService(
	stations postgres.LocationRepository,
	candidates postgres.CandidateRepository,
	submissions postgres.SubmissionRepository,
	photos objectstore.PhotoStore,
	verify verification.Config,
	limits UploadLimits,
	m *metrics.Metrics,
) *SubmissionService {
	return &SubmissionService{
		stations:    stations,
		candidates:  candidates,
		submissions: submissions,
		photos:      photos,
		verify:      verify,
		limits:      limits,
		metrics:     m,
		log:         logger.Service("submission"),
	}
}

// Submit verifies the location, stores the photos and persists the
// submission with its intake confidence score. Arithmetic and cross-check
// signals are unknown until a result is recorded.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitOutcome, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	station, err := s.stations.GetPollingStation(ctx, req.PollingStationID)
	if err != nil {
		s.conflict(err)
		return nil, err
	}
	if _, err := s.candidates.GetByID(ctx, req.CandidateID); err != nil {
		s.conflict(err)
		return nil, err
	}

	if req.SubmissionType == submission.TypePrimary {
		exists, err := s.submissions.HasPrimary(ctx, req.Caller.UserID, req.PollingStationID, req.CandidateID)
		if err != nil {
			return nil, err
		}
		if exists {
			s.conflict(submission.ErrDuplicatePrimary)
			return nil, submission.ErrDuplicatePrimary
		}
	}

	sub := submission.NewSubmission(req.Caller.UserID, req.PollingStationID, req.CandidateID, req.SubmissionType)
	sub.SubmittedAt = nowUTC()
	sub.SubmittedLat = req.SubmittedLat
	sub.SubmittedLng = req.SubmittedLng
	sub.DeviceID = req.DeviceID
	sub.CapturedAt = req.CapturedAt

	loc := s.verify.VerifyLocation(geo.NewPoint(req.SubmittedLat, req.SubmittedLng), station.Coordinates(), station.LocationRadius)
	sub.LocationVerified = loc.Verified
	if loc.Checked {
		distance := loc.DistanceMeters
		sub.DistanceMeters = &distance
	}
	s.log.Debug("location checked", "submission_id", sub.ID, "checked", loc.Checked, "verified", loc.Verified, "distance_meters", loc.DistanceMeters)

	if err := s.storePhotos(ctx, sub, req.Photos); err != nil {
		return nil, err
	}

	sub.PhotoCount = len(sub.Photos)
	sub.HasRequiredPhotos = s.verify.HasRequiredPhotos(sub.PhotoTypes())
	sub.ConfidenceScore = verification.Score(verification.Signals{
		Location:          loc,
		HasRequiredPhotos: sub.HasRequiredPhotos,
		PhotoCount:        sub.PhotoCount,
		CapturedAt:        sub.CapturedAt,
		SubmittedAt:       sub.SubmittedAt,
	})

	if err := s.submissions.Create(ctx, sub); err != nil {
		s.discardPhotos(sub.Photos)
		s.conflict(err)
		return nil, err
	}

	s.metrics.RecordSubmission(string(sub.SubmissionType), loc.Checked, loc.Verified, sub.ConfidenceScore)
	s.log.Info("submission accepted",
		"submission_id", sub.ID,
		"polling_station_id", sub.PollingStationID,
		"type", sub.SubmissionType,
		"confidence_score", sub.ConfidenceScore)

	return &SubmitOutcome{
		SubmissionID:     sub.ID,
		LocationVerified: sub.LocationVerified,
		LocationChecked:  loc.Checked,
		DistanceMeters:   sub.DistanceMeters,
		ConfidenceScore:  sub.ConfidenceScore,
		PhotoCount:       sub.PhotoCount,
		Status:           string(sub.Status),
	}, nil
}

func (s *SubmissionService) validate(req SubmitRequest) error {
	if req.Caller.UserID == uuid.Nil {
		return validation.Errorf("user_id", "is required")
	}
	if req.PollingStationID == 0 {
		return validation.Errorf("polling_station_id", "is required")
	}
	if req.CandidateID == 0 {
		return validation.Errorf("candidate_id", "is required")
	}
	if _, err := submission.ParseType(string(req.SubmissionType)); err != nil {
		return validation.Errorf("submission_type", "must be one of primary, backup, public")
	}
	if err := validation.ValidateCoordinates(req.SubmittedLat, req.SubmittedLng); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength(req.DeviceID, 255, "device_id"); err != nil {
		return err
	}

	if s.limits.MaxPhotos > 0 && len(req.Photos) > s.limits.MaxPhotos {
		return validation.Errorf("photos", "at most %d files may be uploaded", s.limits.MaxPhotos)
	}
	for i, p := range req.Photos {
		field := fmt.Sprintf("photos[%d]", i)
		if !verification.KnownPhotoType(p.PhotoType) {
			return validation.Errorf(field, "has unknown photo type %q", p.PhotoType)
		}
		if !objectstore.SupportedContentType(p.ContentType) {
			return validation.Errorf(field, "has unsupported content type %q", p.ContentType)
		}
		if p.Size <= 0 {
			return validation.Errorf(field, "is empty")
		}
		if s.limits.MaxFileSize > 0 && p.Size > s.limits.MaxFileSize {
			return validation.Errorf(field, "exceeds the maximum size of %d bytes", s.limits.MaxFileSize)
		}
		if p.Open == nil {
			return validation.Errorf(field, "has no content")
		}
	}
	return nil
}

// storePhotos uploads every photo and attaches its reference to sub. On
// failure the photos already uploaded are removed.
func (s *SubmissionService) storePhotos(ctx context.Context, sub *submission.Submission, uploads []PhotoUpload) error {
	sub.Photos = make([]submission.Photo, 0, len(uploads))

	for _, upload := range uploads {
		key := objectstore.PhotoKey(sub.ID, upload.PhotoType, upload.ContentType)
		if err := s.putPhoto(ctx, key, upload); err != nil {
			s.discardPhotos(sub.Photos)
			sub.Photos = nil
			return fmt.Errorf("failed to store photo: %w", err)
		}

		sub.Photos = append(sub.Photos, submission.Photo{
			ID:           uuid.New(),
			SubmissionID: sub.ID,
			PhotoType:    upload.PhotoType,
			ObjectKey:    key,
			ContentType:  upload.ContentType,
			SizeBytes:    upload.Size,
		})
	}
	return nil
}

func (s *SubmissionService) putPhoto(ctx context.Context, key string, upload PhotoUpload) error {
	body, err := upload.Open()
	if err != nil {
		return err
	}
	defer body.Close()
	return s.photos.Put(ctx, key, body, upload.Size, upload.ContentType)
}

// discardPhotos removes uploaded objects that will not be referenced. It
// outlives the request so a cancelled client does not leave orphans behind.
func (s *SubmissionService) discardPhotos(photos []submission.Photo) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, p := range photos {
		if err := s.photos.Remove(ctx, p.ObjectKey); err != nil {
			s.log.Warn("failed to remove orphaned photo", "key", p.ObjectKey, "error", err)
		}
	}
}

func (s *SubmissionService) conflict(err error) {
	switch {
	case errors.Is(err, submission.ErrDuplicatePrimary):
		s.metrics.RecordConflict("duplicate_primary")
	case errors.Is(err, submission.ErrStationNotFound):
		s.metrics.RecordConflict("unknown_station")
	case errors.Is(err, submission.ErrCandidateNotFound):
		s.metrics.RecordConflict("unknown_candidate")
	}
}
