package postgres

import "github.com/gravadigital/tallywatch-api/internal/domain/scope"

// stationJoins brings a polling_stations row (aliased ps) together with its
// ward and constituency so any scope level can be filtered on.
const stationJoins = `
        JOIN wards w ON w.id = ps.ward_id
        JOIN constituencies c ON c.id = w.constituency_id`

// scopeCondition translates a scope into a predicate over stationJoins.
// A denied scope yields a predicate that matches nothing.
func scopeCondition(sc scope.Scope) (string, []any) {
	if sc.Denied {
		return "1 = 0", nil
	}

	switch sc.Level {
	case scope.LevelCounty:
		return "c.county_id = ?", []any{sc.ID}
	case scope.LevelConstituency:
		return "w.constituency_id = ?", []any{sc.ID}
	case scope.LevelWard:
		return "ps.ward_id = ?", []any{sc.ID}
	case scope.LevelPollingStation:
		return "ps.id = ?", []any{sc.ID}
	default:
		return "1 = 1", nil
	}
}
