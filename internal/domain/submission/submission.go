// Package submission models field reports from polling stations and the
// vote counts attached to them.
package submission

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type distinguishes the official report of a station from independent ones.
type Type string

const (
	TypePrimary Type = "primary"
	TypeBackup  Type = "backup"
	TypePublic  Type = "public"
)

// ParseType converts a raw value into a Type.
func ParseType(value string) (Type, error) {
	switch Type(value) {
	case TypePrimary, TypeBackup, TypePublic:
		return Type(value), nil
	}
	return "", fmt.Errorf("invalid submission_type: %q", value)
}

func (t *Type) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*t = Type(v)
	case []byte:
		*t = Type(v)
	default:
		return fmt.Errorf("cannot scan %T into Type", value)
	}
	return nil
}

func (t Type) Value() (driver.Value, error) {
	return string(t), nil
}

// Status is the review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusFlagged  Status = "flagged"
	StatusRejected Status = "rejected"
)

// ParseStatus converts a raw value into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusVerified, StatusFlagged, StatusRejected:
		return Status(value), nil
	}
	return "", fmt.Errorf("invalid status: %q", value)
}

func (s *Status) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*s = Status(v)
	case []byte:
		*s = Status(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
	return nil
}

func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}

// Final reports whether review of the submission is over.
func (s Status) Final() bool {
	return s == StatusVerified || s == StatusRejected
}

// CanTransitionTo reports whether a reviewer may move a submission from s to
// next. Verified and rejected submissions are final.
func (s Status) CanTransitionTo(next Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {StatusVerified, StatusFlagged, StatusRejected},
		StatusFlagged: {StatusVerified, StatusRejected},
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Submission is one agent's or observer's report for one polling station
// in the context of one candidate's race.
type Submission struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PollingStationID uint      `json:"polling_station_id" gorm:"not null;index"`
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CandidateID      uint      `json:"candidate_id" gorm:"not null;index"`
	SubmissionType   Type      `json:"submission_type" gorm:"type:varchar(16);not null"`
	Status           Status    `json:"status" gorm:"type:varchar(16);not null;index"`
	SubmittedLat     *float64  `json:"submitted_lat,omitempty"`
	SubmittedLng     *float64  `json:"submitted_lng,omitempty"`
	DeviceID         string    `json:"device_id,omitempty"`

	LocationVerified  bool    `json:"location_verified" gorm:"not null;default:false"`
	DistanceMeters    *int    `json:"distance_meters,omitempty"`
	PhotoCount        int     `json:"photo_count" gorm:"not null;default:0"`
	HasRequiredPhotos bool    `json:"has_required_photos" gorm:"not null;default:false"`
	HistoricalMatch   bool    `json:"historical_match" gorm:"not null;default:false"`
	ConfidenceScore   int     `json:"confidence_score" gorm:"not null;default:0"`
	HasDiscrepancy    bool    `json:"has_discrepancy" gorm:"not null;default:false"`
	FlaggedReason     *string `json:"flagged_reason,omitempty" gorm:"type:text"`

	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at" gorm:"not null;index"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`

	Photos []Photo `json:"photos,omitempty" gorm:"foreignKey:SubmissionID"`
	Result *Result `json:"result,omitempty" gorm:"foreignKey:SubmissionID"`
}

// Photo is an uploaded image of the results form.
type Photo struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;index"`
	PhotoType    string    `json:"photo_type" gorm:"type:varchar(32);not null"`
	ObjectKey    string    `json:"object_key" gorm:"not null"`
	ContentType  string    `json:"content_type" gorm:"not null"`
	SizeBytes    int64     `json:"size_bytes" gorm:"not null"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Submission) TableName() string {
	return "submissions"
}

// TableName overrides the table name
func (Photo) TableName() string {
	return "submission_photos"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeCreate will set a UUID rather than numeric ID.
func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewSubmission creates a pending submission.
func NewSubmission(userID uuid.UUID, stationID, candidateID uint, kind Type) *Submission {
	return &Submission{
		ID:               uuid.New(),
		PollingStationID: stationID,
		UserID:           userID,
		CandidateID:      candidateID,
		SubmissionType:   kind,
		Status:           StatusPending,
		SubmittedAt:      time.Now().UTC(),
	}
}

// PhotoTypes returns the type of every attached photo.
func (s *Submission) PhotoTypes() []string {
	types := make([]string, 0, len(s.Photos))
	for _, p := range s.Photos {
		types = append(types, p.PhotoType)
	}
	return types
}

// Validate checks the submission before it is persisted.
func (s *Submission) Validate() error {
	if s.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if s.PollingStationID == 0 {
		return fmt.Errorf("polling_station_id is required")
	}
	if s.CandidateID == 0 {
		return fmt.Errorf("candidate_id is required")
	}
	if _, err := ParseType(string(s.SubmissionType)); err != nil {
		return err
	}
	if (s.SubmittedLat == nil) != (s.SubmittedLng == nil) {
		return fmt.Errorf("submitted_lat and submitted_lng must be supplied together")
	}
	return nil
}
