package verification

import "time"

// Signals are the inputs of the confidence score. Photo storage, GPS and
// the cross-check against independent submissions are resolved by the
// caller; the scorer only consumes their outputs.
type Signals struct {
	Location          LocationCheck
	HasRequiredPhotos bool
	PhotoCount        int
	ArithmeticValid   bool
	// CapturedAt is when the form was photographed; nil scores no timeliness points.
	CapturedAt      *time.Time
	SubmittedAt     time.Time
	HistoricalMatch bool
}

// Score combines signals into an advisory 0-100 trust indicator.
func Score(s Signals) int {
	score := locationPoints(s.Location) +
		photoPoints(s.HasRequiredPhotos, s.PhotoCount) +
		timelinessPoints(s.CapturedAt, s.SubmittedAt)

	if s.ArithmeticValid {
		score += 20
	}
	if s.HistoricalMatch {
		score += 15
	}

	return min(max(score, 0), 100)
}

func locationPoints(loc LocationCheck) int {
	if !loc.Verified {
		return 0
	}
	switch {
	case loc.DistanceMeters <= 100:
		return 20
	case loc.DistanceMeters <= 300:
		return 15
	case loc.DistanceMeters <= 500:
		return 10
	default:
		return 0
	}
}

func photoPoints(hasRequired bool, count int) int {
	points := 0
	if hasRequired {
		points += 20
	}
	switch {
	case count >= 3:
		points += 10
	case count == 2:
		points += 5
	}
	return points
}

// timelinessPoints measures capture-to-submission delay. A capture time later
// than the submission (device clock skew) counts as immediate.
func timelinessPoints(capturedAt *time.Time, submittedAt time.Time) int {
	if capturedAt == nil {
		return 0
	}
	elapsed := max(submittedAt.Sub(*capturedAt), 0)
	switch {
	case elapsed <= 2*time.Hour:
		return 15
	case elapsed <= 6*time.Hour:
		return 10
	case elapsed <= 12*time.Hour:
		return 5
	default:
		return 0
	}
}
