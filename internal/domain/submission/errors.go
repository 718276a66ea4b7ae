package submission

import "errors"

// Business conflicts reported to the caller by name. Nothing is persisted
// when one of these is returned.
var (
	ErrDuplicatePrimary   = errors.New("a primary submission already exists for this user, polling station and candidate")
	ErrStationNotFound    = errors.New("polling station not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrResultExists       = errors.New("a result has already been recorded for this submission")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrNoResult           = errors.New("submission has no recorded result")
	ErrReviewClosed       = errors.New("submission has already been verified or rejected")
	ErrForbidden          = errors.New("caller may not act on this submission")
)
