// Package dbtest opens migrated in-memory stores for tests.
package dbtest

import (
	"context"
	"testing"

	"moddingway/utils/database"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewStore returns an empty SQLite store that is closed when the test ends.
func NewStore(t testing.TB) *database.Store {
	t.Helper()
	db, err := sqlx.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := database.New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}
