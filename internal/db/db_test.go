package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer database.Close()
	database.SetMaxOpenConns(1)

	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))
	// applying twice is a no-op
	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))

	var tables []string
	err = database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('sessions', 'archived_snapshots') ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"archived_snapshots", "sessions"}, tables)
}
