package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-approvals/internal/common/models"
	"go-approvals/internal/database"

	"github.com/google/uuid"
)

const auditColumns = `id, task_id, action, performed_by, timestamp, remarks`

type AuditRepositorySQL struct {
	db *database.Database
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAudit(s scanner) (*models.AuditLog, error) {
	var (
		l           models.AuditLog
		action      string
		performedBy sql.NullString
	)
	if err := s.Scan(&l.ID, &l.TaskID, &action, &performedBy, &l.Timestamp, &l.Remarks); err != nil {
		return nil, err
	}
	l.Action = models.AuditAction(action)
	if performedBy.Valid {
		l.PerformedBy = &performedBy.String
	}
	l.Timestamp = models.Normalize(l.Timestamp)
	return &l, nil
}

func (r *AuditRepositorySQL) Append(ctx context.Context, log *models.AuditLog) error {
	prepareLog(log)

	var performedBy any
	if log.PerformedBy != nil {
		performedBy = *log.PerformedBy
	}
	_, err := r.db.Querier(ctx).ExecContext(ctx, r.db.Rebind(`
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`),
		log.ID, log.TaskID, string(log.Action), performedBy, log.Timestamp, log.Remarks,
	)
	if err != nil {
		return fmt.Errorf("append audit %s: %w", log.Action, err)
	}
	return nil
}

func (r *AuditRepositorySQL) ListByTask(ctx context.Context, taskID string) ([]models.AuditLog, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, r.db.Rebind(`
		SELECT `+auditColumns+` FROM audit_logs
		WHERE task_id = ?
		ORDER BY timestamp, id`), taskID)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := []models.AuditLog{}
	for rows.Next() {
		l, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (r *AuditRepositorySQL) LatestByAction(ctx context.Context, taskID string, action models.AuditAction) (*models.AuditLog, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx, r.db.Rebind(`
		SELECT `+auditColumns+` FROM audit_logs
		WHERE task_id = ? AND action = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`), taskID, string(action))
	l, err := scanAudit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest audit %s: %w", action, err)
	}
	return l, nil
}

func (r *AuditRepositorySQL) ExistsByAction(ctx context.Context, taskID string, action models.AuditAction) (bool, error) {
	var n int
	err := r.db.Querier(ctx).QueryRowContext(ctx, r.db.Rebind(`
		SELECT COUNT(1) FROM audit_logs WHERE task_id = ? AND action = ?`),
		taskID, string(action)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count audit %s: %w", action, err)
	}
	return n > 0, nil
}

// prepareLog assigns a time-ordered id so entries sharing a timestamp list
// in write order.
func prepareLog(log *models.AuditLog) {
	if log.ID == "" {
		log.ID = uuid.Must(uuid.NewV7()).String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = models.Now()
	} else {
		log.Timestamp = models.Normalize(log.Timestamp)
	}
}
