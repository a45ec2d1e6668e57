package database

import (
	"path/filepath"
	"testing"

	"ai-trip-planner/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trip.db")

	db, err := NewDB(path, logger.Nop())
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"trip_plans", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	// Re-running migrations on an up-to-date schema is a no-op.
	assert.NoError(t, RunMigrations(path))
}
