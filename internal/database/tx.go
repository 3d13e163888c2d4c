package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"go-approvals/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn as one atomic unit. Repositories called with the ctx
// handed to fn join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Querier is the subset of *sql.DB and *sql.Tx the SQL repositories use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// WithinTx implements Transactor. Nested calls reuse the outer transaction.
func (d *Database) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.IsMongo() {
		return d.withinMongoTx(ctx, fn)
	}
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (d *Database) withinMongoTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := d.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Querier returns the transaction bound to ctx, or the pool.
func (d *Database) Querier(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.SQL
}

// Rebind rewrites '?' placeholders into the driver's native form.
func (d *Database) Rebind(query string) string {
	if d.Driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ForUpdate is the row-locking suffix for SELECTs inside a transaction.
// SQLite serializes writers itself and has no such clause.
func (d *Database) ForUpdate() string {
	if d.Driver == config.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}
