package candidate

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Position is the elective office a race is contested for.
type Position string

const (
	PositionPresident Position = "president"
	PositionGovernor  Position = "governor"
	PositionSenator   Position = "senator"
	PositionWomenRep  Position = "women_rep"
	PositionMP        Position = "mp"
	PositionMCA       Position = "mca"
)

// Positions lists every contested office.
func Positions() []Position {
	return []Position{
		PositionPresident,
		PositionGovernor,
		PositionSenator,
		PositionWomenRep,
		PositionMP,
		PositionMCA,
	}
}

// ParsePosition converts a raw value into a Position.
func ParsePosition(value string) (Position, error) {
	for _, p := range Positions() {
		if string(p) == value {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid position: %q", value)
}

func (p Position) String() string {
	return string(p)
}

func (p *Position) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*p = Position(v)
	case []byte:
		*p = Position(v)
	default:
		return fmt.Errorf("cannot scan %T into Position", value)
	}
	return nil
}

func (p Position) Value() (driver.Value, error) {
	return string(p), nil
}

// Candidate is either a ballot entry or, when IsSystemUser is set, an
// operator account that manages agents but never appears in a tally.
type Candidate struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	PartyName      string    `json:"party_name"`
	Position       Position  `json:"position" gorm:"type:varchar(32);not null;index"`
	CountyID       *uint     `json:"county_id,omitempty" gorm:"index"`
	ConstituencyID *uint     `json:"constituency_id,omitempty" gorm:"index"`
	WardID         *uint     `json:"ward_id,omitempty" gorm:"index"`
	IsSystemUser   bool      `json:"is_system_user" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName overrides the table name
func (Candidate) TableName() string {
	return "candidates"
}

// OnBallot reports whether the candidate is a race participant.
func (c *Candidate) OnBallot() bool {
	return !c.IsSystemUser
}
