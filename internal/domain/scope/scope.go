// Package scope turns a caller's electoral role into the single geographic
// filter that bounds every query the caller may issue.
package scope

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
)

// Role identifies what kind of account is calling.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCandidate Role = "candidate"
	RoleAgent     Role = "agent"
	RoleObserver  Role = "observer"
	RolePublic    Role = "public"
)

// Level is the rung of the geographic hierarchy a scope is bound to.
type Level string

const (
	LevelNational       Level = "national"
	LevelCounty         Level = "county"
	LevelConstituency   Level = "constituency"
	LevelWard           Level = "ward"
	LevelPollingStation Level = "polling_station"
)

// ParseLevel accepts the legacy "level" query values.
func ParseLevel(value string) (Level, error) {
	switch Level(value) {
	case LevelNational, LevelCounty, LevelConstituency, LevelWard, LevelPollingStation:
		return Level(value), nil
	case "station":
		return LevelPollingStation, nil
	}
	return "", fmt.Errorf("invalid level: %q", value)
}

// Caller is the identity a request runs as. Location ids come from the
// caller's candidate profile and are only consulted for RoleCandidate.
type Caller struct {
	UserID         uuid.UUID          `json:"user_id"`
	Role           Role               `json:"role"`
	Position       candidate.Position `json:"position,omitempty"`
	CountyID       *uint              `json:"county_id,omitempty"`
	ConstituencyID *uint              `json:"constituency_id,omitempty"`
	WardID         *uint              `json:"ward_id,omitempty"`
}

// Public is the anonymous caller.
func Public() Caller {
	return Caller{Role: RolePublic}
}

// Scope is a single geographic bound. At most one level id is set; a
// denied scope matches nothing.
type Scope struct {
	Level Level `json:"level"`
	ID    uint  `json:"id,omitempty"`
	// Restricted marks a bound imposed by the caller's role rather than
	// requested by the caller.
	Restricted bool `json:"restricted"`
	Denied     bool `json:"denied,omitempty"`
}

// National is the unrestricted scope.
func National() Scope {
	return Scope{Level: LevelNational}
}

// Deny is the scope that matches no polling station.
func Deny() Scope {
	return Scope{Level: LevelNational, Restricted: true, Denied: true}
}

// At bounds the scope to one location.
func At(level Level, id uint) Scope {
	if level == LevelNational {
		return National()
	}
	return Scope{Level: level, ID: id}
}

func (s Scope) IsNational() bool {
	return !s.Denied && s.Level == LevelNational
}

func (s Scope) CountyID() *uint { return s.idAt(LevelCounty) }
func (s Scope) ConstituencyID() *uint { return s.idAt(LevelConstituency) }
func (s Scope) WardID() *uint { return s.idAt(LevelWard) }
func (s Scope) PollingStationID() *uint { return s.idAt(LevelPollingStation) }

func (s Scope) idAt(level Level) *uint {
	if s.Denied || s.Level != level {
		return nil
	}
	id := s.ID
	return &id
}

func (s Scope) String() string {
	switch {
	case s.Denied:
		return "denied"
	case s.Level == LevelNational:
		return string(LevelNational)
	}
	return fmt.Sprintf("%s:%d", s.Level, s.ID)
}

// Resolve computes the scope a caller is bound to. Candidates are bound to
// the area of their race; a candidate profile missing the expected location
// id resolves to Deny. Every other role is unrestricted.
func Resolve(caller Caller) Scope {
	if caller.Role != RoleCandidate {
		return National()
	}

	switch caller.Position {
	case candidate.PositionPresident:
		return National()
	case candidate.PositionGovernor, candidate.PositionSenator, candidate.PositionWomenRep:
		return bound(LevelCounty, caller.CountyID)
	case candidate.PositionMP:
		return bound(LevelConstituency, caller.ConstituencyID)
	case candidate.PositionMCA:
		return bound(LevelWard, caller.WardID)
	default:
		return Deny()
	}
}

func bound(level Level, id *uint) Scope {
	if id == nil || *id == 0 {
		return Deny()
	}
	return Scope{Level: level, ID: *id, Restricted: true}
}
