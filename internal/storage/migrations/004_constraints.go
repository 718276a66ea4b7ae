package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

type checkConstraint struct {
	table string
	name  string
	check string
}

// Result counts are deliberately unconstrained: inconsistent forms are
// stored together with their validation errors.
var checkConstraints = []checkConstraint{
	{"polling_stations", "valid_registered_voters", "registered_voters >= 0"},
	{"polling_stations", "valid_location_radius", "location_radius >= 0"},
	{"polling_stations", "valid_station_coordinates", "(latitude IS NULL OR latitude BETWEEN -90 AND 90) AND (longitude IS NULL OR longitude BETWEEN -180 AND 180)"},
	{"candidates", "valid_position", "position IN ('president', 'governor', 'senator', 'women_rep', 'mp', 'mca')"},
	{"submissions", "valid_submission_type", "submission_type IN ('primary', 'backup', 'public')"},
	{"submissions", "valid_status", "status IN ('pending', 'verified', 'flagged', 'rejected')"},
	{"submissions", "valid_confidence_score", "confidence_score BETWEEN 0 AND 100"},
	{"submissions", "valid_submitted_coordinates", "(submitted_lat IS NULL) = (submitted_lng IS NULL)"},
	{"submission_photos", "valid_photo_size", "size_bytes > 0"},
	{"candidate_votes", "valid_candidate_name", "LENGTH(candidate_name) > 0"},
}

// migration004Up creates check constraints and database-side uuid defaults.
// SQLite cannot add constraints to existing tables, so it is skipped there.
func migration004Up(db *gorm.DB) error {
	if !isPostgres(db) {
		return nil
	}

	for _, c := range checkConstraints {
		if err := db.Exec(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", c.table, c.name)).Error; err != nil {
			return err
		}
		if err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)", c.table, c.name, c.check)).Error; err != nil {
			return fmt.Errorf("constraint %s: %w", c.name, err)
		}
	}

	for _, table := range []string{"submissions", "submission_photos", "results"} {
		if err := db.Exec(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN id SET DEFAULT uuid_generate_v4()", table)).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration004Down drops the check constraints and uuid defaults
func migration004Down(db *gorm.DB) error {
	if !isPostgres(db) {
		return nil
	}

	for _, table := range []string{"submissions", "submission_photos", "results"} {
		if err := db.Exec(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN id DROP DEFAULT", table)).Error; err != nil {
			return err
		}
	}

	for _, c := range checkConstraints {
		if err := db.Exec(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", c.table, c.name)).Error; err != nil {
			return err
		}
	}

	return nil
}
