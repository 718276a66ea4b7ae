package migrations

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/location"
)

func ptr[T any](v T) *T { return &v }

// SeedSampleData inserts a small electoral geography and ballot for local
// development. Rows that already exist are left untouched.
func SeedSampleData(db *gorm.DB) error {
	counties := []location.County{
		{ID: 47, Name: "Nairobi", Code: "047", RegisteredVoters: 2415310},
	}
	constituencies := []location.Constituency{
		{ID: 274, CountyID: 47, Name: "Westlands", Code: "274", RegisteredVoters: 162729},
		{ID: 275, CountyID: 47, Name: "Dagoretti North", Code: "275", RegisteredVoters: 142015},
	}
	wards := []location.Ward{
		{ID: 1371, ConstituencyID: 274, Name: "Kitisuru", Code: "1371", RegisteredVoters: 32610},
		{ID: 1372, ConstituencyID: 274, Name: "Parklands/Highridge", Code: "1372", RegisteredVoters: 38412},
		{ID: 1376, ConstituencyID: 275, Name: "Kilimani", Code: "1376", RegisteredVoters: 41325},
	}
	stations := []location.PollingStation{
		{ID: 1, WardID: 1371, Name: "Kitisuru Primary School", Code: "047274137100101", RegisteredVoters: 700, Latitude: ptr(-1.2200), Longitude: ptr(36.7870), LocationRadius: 300},
		{ID: 2, WardID: 1371, Name: "Loresho Primary School", Code: "047274137100201", RegisteredVoters: 650, Latitude: ptr(-1.2470), Longitude: ptr(36.7620)},
		{ID: 3, WardID: 1372, Name: "Parklands Arya Primary", Code: "047274137200101", RegisteredVoters: 700, Latitude: ptr(-1.2630), Longitude: ptr(36.8150)},
		{ID: 4, WardID: 1376, Name: "Kilimani Primary School", Code: "047275137600101", RegisteredVoters: 700},
	}
	candidates := []candidate.Candidate{
		{ID: 1, Name: "Amina Wanjiku", PartyName: "Umoja Party", Position: candidate.PositionPresident},
		{ID: 2, Name: "Brian Otieno", PartyName: "Mwangaza Alliance", Position: candidate.PositionPresident},
		{ID: 3, Name: "Cynthia Achieng", PartyName: "Umoja Party", Position: candidate.PositionMP, CountyID: ptr(uint(47)), ConstituencyID: ptr(uint(274))},
		{ID: 4, Name: "David Kiprono", PartyName: "Mwangaza Alliance", Position: candidate.PositionMP, CountyID: ptr(uint(47)), ConstituencyID: ptr(uint(274))},
		{ID: 5, Name: "Esther Njeri", PartyName: "Umoja Party", Position: candidate.PositionMCA, CountyID: ptr(uint(47)), ConstituencyID: ptr(uint(274)), WardID: ptr(uint(1371))},
		{ID: 6, Name: "Operations Desk", Position: candidate.PositionPresident, IsSystemUser: true},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		rows := []struct {
			name  string
			value any
		}{
			{"counties", &counties},
			{"constituencies", &constituencies},
			{"wards", &wards},
			{"polling_stations", &stations},
			{"candidates", &candidates},
		}
		for _, r := range rows {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(r.value).Error; err != nil {
				return fmt.Errorf("failed to seed %s: %w", r.name, err)
			}
		}
		return nil
	})
}
