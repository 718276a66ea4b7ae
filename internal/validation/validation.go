package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Error is an input rejection: the request is malformed and nothing was
// persisted.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// Errorf builds an input rejection for field.
func Errorf(field, format string, args ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is an input rejection.
func IsInputError(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

// ValidateMaxLength valida la longitud máxima de un string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return Errorf(fieldName, "must be at most %d characters long", maxLength)
	}
	return nil
}

// ParseUUID parses a required uuid field.
func ParseUUID(value, fieldName string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, Errorf(fieldName, "must be a valid UUID")
	}
	return id, nil
}

// ParseID parses a required positive numeric id.
func ParseID(value, fieldName string) (uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, Errorf(fieldName, "is required")
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, Errorf(fieldName, "must be a positive integer")
	}
	return uint(id), nil
}

// ParseOptionalID parses a numeric id that may be absent.
func ParseOptionalID(value, fieldName string) (*uint, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := ParseID(value, fieldName)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseOptionalFloat parses a number that may be absent.
func ParseOptionalFloat(value, fieldName string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, Errorf(fieldName, "must be a number")
	}
	return &f, nil
}

// ValidateCoordinates checks an optional coordinate pair: both or neither
// must be present, and present values must be in range.
func ValidateCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return Errorf("submitted_lat", "and submitted_lng must be supplied together")
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return Errorf("submitted_lat", "must be between -90 and 90")
	}
	if *lng < -180 || *lng > 180 {
		return Errorf("submitted_lng", "must be between -180 and 180")
	}
	return nil
}
