package migrations

import "gorm.io/gorm"

// migration003Up creates lookup indexes and the one-primary-per-race rule
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_constituencies_county ON constituencies(county_id)",
		"CREATE INDEX IF NOT EXISTS idx_wards_constituency ON wards(constituency_id)",
		"CREATE INDEX IF NOT EXISTS idx_polling_stations_ward ON polling_stations(ward_id)",

		"CREATE INDEX IF NOT EXISTS idx_candidates_ballot ON candidates(position, is_system_user)",

		"CREATE INDEX IF NOT EXISTS idx_submissions_station_status ON submissions(polling_station_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, submitted_at DESC)",
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_submissions_primary
            ON submissions(user_id, polling_station_id, candidate_id)
            WHERE submission_type = 'primary'`,

		"CREATE INDEX IF NOT EXISTS idx_candidate_votes_result ON candidate_votes(result_id)",
	}

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops the indexes created by migration003Up
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"idx_constituencies_county",
		"idx_wards_constituency",
		"idx_polling_stations_ward",
		"idx_candidates_ballot",
		"idx_submissions_station_status",
		"idx_submissions_user",
		"ux_submissions_primary",
		"idx_candidate_votes_result",
	}

	for _, index := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + index).Error; err != nil {
			return err
		}
	}

	return nil
}
