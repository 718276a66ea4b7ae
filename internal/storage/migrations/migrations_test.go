package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/location"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func TestRunMigrations_AppliesInOrderAndIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, RunMigrations(db))
	require.NoError(t, RunMigrations(db))

	ids, err := AppliedMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002", "003", "004"}, ids)

	for _, model := range AllModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex("submissions", "ux_submissions_primary"))
}

func TestRollbackMigration_UndoesLastMigration(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, RollbackMigration(db))
	require.NoError(t, RollbackMigration(db))

	ids, err := AppliedMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, ids)
	assert.False(t, db.Migrator().HasIndex("submissions", "ux_submissions_primary"))

	require.NoError(t, RollbackMigration(db))
	assert.False(t, db.Migrator().HasTable("submissions"))
	assert.False(t, db.Migrator().HasTable("counties"))
}

func TestRollbackMigration_NothingApplied(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, createMigrationsTable(db))

	assert.Error(t, RollbackMigration(db))
}

func TestSeedSampleData_IsRepeatable(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, SeedSampleData(db))
	require.NoError(t, SeedSampleData(db))

	var stations, ballot int64
	require.NoError(t, db.Model(&location.PollingStation{}).Count(&stations).Error)
	require.NoError(t, db.Model(&candidate.Candidate{}).Where("is_system_user = ?", false).Count(&ballot).Error)
	assert.EqualValues(t, 4, stations)
	assert.EqualValues(t, 5, ballot)
}
