// Package dbtest provides throwaway stores for package tests.
package dbtest

import (
	"context"
	"testing"

	"go-approvals/internal/database"

	"github.com/stretchr/testify/require"
)

// NewSQLite returns a migrated in-memory SQLite store closed at test end.
func NewSQLite(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}
