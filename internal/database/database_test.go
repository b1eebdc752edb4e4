package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://bot@localhost:5432/bot"))
	assert.True(t, isPostgres("postgresql://bot@localhost/bot"))
	assert.True(t, isPostgres("host=localhost user=bot dbname=bot"))
	assert.False(t, isPostgres("bot.db"))
	assert.False(t, isPostgres("file::memory:?cache=shared"))
}

func TestOpenSQLite(t *testing.T) {
	db, err := Open("file::memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.NoError(t, sqlDB.Ping())
}
