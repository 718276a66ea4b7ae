// Package verification decides how far a field submission can be trusted:
// GPS proximity, arithmetic consistency, statistical anomalies and the
// combined confidence score.
package verification

// Photo types an agent is expected to capture for every form.
const (
	PhotoFullForm  = "full_form"
	PhotoSignature = "signature"
	PhotoStamp     = "stamp"
	PhotoCloseUp   = "close_up"
)

// KnownPhotoType reports whether t is one of the photo types above.
func KnownPhotoType(t string) bool {
	switch t {
	case PhotoFullForm, PhotoSignature, PhotoStamp, PhotoCloseUp:
		return true
	}
	return false
}

// Config carries the tunable thresholds. It is built once from the
// application configuration and passed to the components that need it.
type Config struct {
	// DefaultRadiusMeters applies when a polling station has no custom radius.
	DefaultRadiusMeters int

	HighTurnout      float64 // fraction, flag above
	LowTurnout       float64 // fraction, flag below
	MaxRejectionRate float64 // fraction, flag above
	LandslideShare   float64 // fraction of valid votes, flag above

	RequiredPhotoTypes []string
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		DefaultRadiusMeters: 500,
		HighTurnout:         0.95,
		LowTurnout:          0.20,
		MaxRejectionRate:    0.10,
		LandslideShare:      0.90,
		RequiredPhotoTypes:  []string{PhotoFullForm, PhotoSignature},
	}
}

// HasRequiredPhotos reports whether every required photo type appears in types.
func (c Config) HasRequiredPhotos(types []string) bool {
	present := make(map[string]bool, len(types))
	for _, t := range types {
		present[t] = true
	}
	for _, required := range c.RequiredPhotoTypes {
		if !present[required] {
			return false
		}
	}
	return true
}
