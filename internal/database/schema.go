package database

import (
	"context"
	"fmt"
	"strings"

	"go-approvals/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersTable     = "users"
	TasksTable     = "approval_tasks"
	AuditLogsTable = "audit_logs"
)

// Table layout is shared by SQLite and PostgreSQL; only the timestamp type
// differs and is filled in for {{ts}}.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT 'EMPLOYEE',
	organization_id TEXT NOT NULL DEFAULT '',
	team_id         TEXT NOT NULL DEFAULT '',
	timezone        TEXT NOT NULL DEFAULT 'UTC',
	created_at      {{ts}} NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS approval_tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	requester_id TEXT NOT NULL REFERENCES users (id),
	approver_id  TEXT NOT NULL REFERENCES users (id),
	urgency      TEXT NOT NULL DEFAULT 'MEDIUM',
	status       TEXT NOT NULL DEFAULT 'PENDING',
	snooze_until {{ts}},
	created_at   {{ts}} NOT NULL,
	updated_at   {{ts}} NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status_created ON approval_tasks (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_approver ON approval_tasks (approver_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_requester ON approval_tasks (requester_id)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
	id           TEXT PRIMARY KEY,
	task_id      TEXT NOT NULL REFERENCES approval_tasks (id),
	action       TEXT NOT NULL,
	performed_by TEXT REFERENCES users (id),
	timestamp    {{ts}} NOT NULL,
	remarks      TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_task_action_ts ON audit_logs (task_id, action, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_task_ts ON audit_logs (task_id, timestamp)`,
}

// Migrate creates tables and indexes (SQL) or indexes (Mongo). It is idempotent.
func (d *Database) Migrate(ctx context.Context) error {
	if d.IsMongo() {
		return d.ensureMongoIndexes(ctx)
	}

	tsType := "DATETIME"
	if d.Driver == config.DriverPostgres {
		tsType = "TIMESTAMPTZ"
	}
	for _, stmt := range schemaStatements {
		if _, err := d.SQL.ExecContext(ctx, strings.ReplaceAll(stmt, "{{ts}}", tsType)); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (d *Database) ensureMongoIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersTable: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		},
		TasksTable: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "approver_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "requester_id", Value: 1}}},
		},
		AuditLogsTable: {
			{Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
	}
	for collection, models := range indexes {
		if _, err := d.Mongo.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", collection, err)
		}
	}
	return nil
}
