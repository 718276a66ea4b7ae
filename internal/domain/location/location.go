// Package location holds the read-only electoral geography:
// County ⊃ Constituency ⊃ Ward ⊃ PollingStation.
package location

import "github.com/gravadigital/tallywatch-api/internal/domain/geo"

type County struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	Name             string `json:"name" gorm:"not null"`
	Code             string `json:"code" gorm:"uniqueIndex;not null"`
	RegisteredVoters int    `json:"registered_voters" gorm:"not null;default:0"`
}

type Constituency struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	CountyID         uint   `json:"county_id" gorm:"not null;index"`
	Name             string `json:"name" gorm:"not null"`
	Code             string `json:"code" gorm:"uniqueIndex;not null"`
	RegisteredVoters int    `json:"registered_voters" gorm:"not null;default:0"`

	County *County `json:"county,omitempty" gorm:"foreignKey:CountyID"`
}

type Ward struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	ConstituencyID   uint   `json:"constituency_id" gorm:"not null;index"`
	Name             string `json:"name" gorm:"not null"`
	Code             string `json:"code" gorm:"uniqueIndex;not null"`
	RegisteredVoters int    `json:"registered_voters" gorm:"not null;default:0"`

	Constituency *Constituency `json:"constituency,omitempty" gorm:"foreignKey:ConstituencyID"`
}

// PollingStation is where a result form is declared. LocationRadius is in
// meters; zero means the configured default applies.
type PollingStation struct {
	ID               uint     `json:"id" gorm:"primaryKey"`
	WardID           uint     `json:"ward_id" gorm:"not null;index"`
	Name             string   `json:"name" gorm:"not null"`
	Code             string   `json:"code" gorm:"uniqueIndex;not null"`
	RegisteredVoters int      `json:"registered_voters" gorm:"not null;default:0"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	LocationRadius   int      `json:"location_radius" gorm:"not null;default:0"`

	Ward *Ward `json:"ward,omitempty" gorm:"foreignKey:WardID"`
}

// TableName overrides the table name
func (County) TableName() string {
	return "counties"
}

// TableName overrides the table name
func (Constituency) TableName() string {
	return "constituencies"
}

// TableName overrides the table name
func (Ward) TableName() string {
	return "wards"
}

// TableName overrides the table name
func (PollingStation) TableName() string {
	return "polling_stations"
}

// Coordinates returns the registered location, or nil when the station was
// seeded without one.
func (p *PollingStation) Coordinates() *geo.Point {
	return geo.NewPoint(p.Latitude, p.Longitude)
}
