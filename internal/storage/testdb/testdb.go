// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/location"
	"github.com/gravadigital/tallywatch-api/internal/storage/migrations"
)

// Open returns a fresh in-memory database with every migration applied.
// The connection is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrations.RunMigrations(db))
	return db
}

// Geography is a small fixture: county 1 with constituencies 10 and 11,
// wards 100 and 101 under constituency 10 and ward 110 under 11, and one
// station per ward (1000, 1010, 1100) with 500 registered voters each.
type Geography struct {
	Counties       []location.County
	Constituencies []location.Constituency
	Wards          []location.Ward
	Stations       []location.PollingStation
}

func ptr[T any](v T) *T { return &v }

// SeedGeography inserts the Geography fixture and returns it.
func SeedGeography(t testing.TB, db *gorm.DB) Geography {
	t.Helper()

	g := Geography{
		Counties: []location.County{{ID: 1, Name: "Lakeside", Code: "C01", RegisteredVoters: 1500}},
		Constituencies: []location.Constituency{
			{ID: 10, CountyID: 1, Name: "North Shore", Code: "K10", RegisteredVoters: 1000},
			{ID: 11, CountyID: 1, Name: "South Shore", Code: "K11", RegisteredVoters: 500},
		},
		Wards: []location.Ward{
			{ID: 100, ConstituencyID: 10, Name: "Harbour", Code: "W100", RegisteredVoters: 500},
			{ID: 101, ConstituencyID: 10, Name: "Market", Code: "W101", RegisteredVoters: 500},
			{ID: 110, ConstituencyID: 11, Name: "Hillside", Code: "W110", RegisteredVoters: 500},
		},
		Stations: []location.PollingStation{
			{ID: 1000, WardID: 100, Name: "Harbour School", Code: "S1000", RegisteredVoters: 500, Latitude: ptr(-1.2921), Longitude: ptr(36.8219)},
			{ID: 1010, WardID: 101, Name: "Market Hall", Code: "S1010", RegisteredVoters: 500, Latitude: ptr(-1.3000), Longitude: ptr(36.8300), LocationRadius: 200},
			{ID: 1100, WardID: 110, Name: "Hillside Chapel", Code: "S1100", RegisteredVoters: 500},
		},
	}

	require.NoError(t, db.Create(&g.Counties).Error)
	require.NoError(t, db.Create(&g.Constituencies).Error)
	require.NoError(t, db.Create(&g.Wards).Error)
	require.NoError(t, db.Create(&g.Stations).Error)
	return g
}

// SeedCandidate inserts one candidate.
func SeedCandidate(t testing.TB, db *gorm.DB, c candidate.Candidate) *candidate.Candidate {
	t.Helper()
	require.NoError(t, db.Create(&c).Error)
	return &c
}
