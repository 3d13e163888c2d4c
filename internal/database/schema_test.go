package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "second run must be a no-op")

	for _, table := range []string{UsersTable, TasksTable, AuditLogsTable} {
		var n int
		require.NoError(t, db.SQL.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n))
		assert.Equal(t, 1, n, table)
	}

	var indexes int
	require.NoError(t, db.SQL.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'index' AND name = 'idx_audit_task_action_ts'`).Scan(&indexes))
	assert.Equal(t, 1, indexes)
}

func TestSchemaStatementsHaveNoFormatVerbs(t *testing.T) {
	for _, stmt := range schemaStatements {
		assert.NotContains(t, stmt, "%")
		if strings.HasPrefix(stmt, "CREATE TABLE") {
			assert.Contains(t, stmt, "{{ts}}")
		}
	}
}
