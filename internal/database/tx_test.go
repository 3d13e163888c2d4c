package database

import (
	"context"
	"errors"
	"testing"

	"go-approvals/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &Database{Driver: config.DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
	assert.Equal(t, " FOR UPDATE", pg.ForUpdate())

	lite := &Database{Driver: config.DriverSQLite}
	assert.Equal(t, "SELECT * FROM t WHERE a = ?", lite.Rebind("SELECT * FROM t WHERE a = ?"))
	assert.Empty(t, lite.ForUpdate())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })
	require.NoError(t, db.Migrate(context.Background()))

	ctx := context.Background()
	boom := errors.New("boom")
	err = db.WithinTx(ctx, func(ctx context.Context) error {
		_, err := db.Querier(ctx).ExecContext(ctx,
			`INSERT INTO users (id, username, role, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
			"u1", "alice", "EMPLOYEE")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)
}

func TestWithinTxCommitsAndNests(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })
	require.NoError(t, db.Migrate(context.Background()))

	ctx := context.Background()
	err = db.WithinTx(ctx, func(ctx context.Context) error {
		return db.WithinTx(ctx, func(ctx context.Context) error {
			_, err := db.Querier(ctx).ExecContext(ctx,
				`INSERT INTO users (id, username, role, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
				"u1", "alice", "EMPLOYEE")
			return err
		})
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}
