package verification

import (
	"math"

	"github.com/gravadigital/tallywatch-api/internal/domain/geo"
)

// LocationCheck is the outcome of comparing a submitted GPS fix with the
// registered location of a polling station.
type LocationCheck struct {
	// Checked is false when either side had no coordinates.
	Checked        bool `json:"checked"`
	Verified       bool `json:"verified"`
	DistanceMeters int  `json:"distance_meters"`
}

// VerifyLocation compares submitted against station. A missing coordinate on
// either side skips the check and leaves the submission unverified instead
// of failing it. radiusMeters <= 0 falls back to cfg.DefaultRadiusMeters.
func (c Config) VerifyLocation(submitted, station *geo.Point, radiusMeters int) LocationCheck {
	if submitted == nil || station == nil {
		return LocationCheck{}
	}

	if radiusMeters <= 0 {
		radiusMeters = c.DefaultRadiusMeters
	}

	distance := int(math.Round(geo.DistanceBetween(*submitted, *station)))

	return LocationCheck{
		Checked:        true,
		Verified:       distance <= radiusMeters,
		DistanceMeters: distance,
	}
}
