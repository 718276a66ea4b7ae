package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/storage/testdb"
)

func TestContainer_HealthAndClose(t *testing.T) {
	ctx := context.Background()
	c := NewContainerWithDB(testdb.Open(t))

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Health(ctx))

	require.NoError(t, c.Close())
	assert.Nil(t, c.GetDB())
	assert.Error(t, c.Ping(ctx))
	assert.NoError(t, c.Close(), "closing twice is a no-op")
}

func TestContainer_HealthReportsMissingTable(t *testing.T) {
	db := testdb.Open(t)
	require.NoError(t, db.Exec("DROP TABLE candidate_votes").Error)

	err := NewContainerWithDB(db).Health(context.Background())
	assert.ErrorContains(t, err, "candidate_votes")
}

func TestOpen_RejectsIncompleteConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "5432"
	cfg.DB.User = "tallywatch"

	_, err := Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "DB_NAME")

	_, err = Open(context.Background(), nil)
	assert.Error(t, err)
}
