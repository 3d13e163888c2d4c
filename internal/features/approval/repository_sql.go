package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"
	"go-approvals/internal/database"

	"github.com/google/uuid"
)

const taskColumns = `id, title, description, requester_id, approver_id, urgency, status, snooze_until, created_at, updated_at`

type TaskRepositorySQL struct {
	db *database.Database
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.ApprovalTask, error) {
	var (
		t       models.ApprovalTask
		urgency string
		status  string
		snooze  sql.NullTime
	)
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.RequesterID, &t.ApproverID,
		&urgency, &status, &snooze, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Urgency = models.Urgency(urgency)
	t.Status = models.TaskStatus(status)
	if snooze.Valid {
		until := models.Normalize(snooze.Time)
		t.SnoozeUntil = &until
	}
	t.CreatedAt = models.Normalize(t.CreatedAt)
	t.UpdatedAt = models.Normalize(t.UpdatedAt)
	return &t, nil
}

func (r *TaskRepositorySQL) Create(ctx context.Context, task *models.ApprovalTask) error {
	prepareTask(task)

	var snooze any
	if task.SnoozeUntil != nil {
		snooze = *task.SnoozeUntil
	}
	_, err := r.db.Querier(ctx).ExecContext(ctx, r.db.Rebind(`
		INSERT INTO approval_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		task.ID, task.Title, task.Description, task.RequesterID, task.ApproverID,
		string(task.Urgency), string(task.Status), snooze, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepositorySQL) GetByID(ctx context.Context, id string) (*models.ApprovalTask, error) {
	return r.get(ctx, `SELECT `+taskColumns+` FROM approval_tasks WHERE id = ?`, id)
}

func (r *TaskRepositorySQL) GetForUpdate(ctx context.Context, id string) (*models.ApprovalTask, error) {
	return r.get(ctx, `SELECT `+taskColumns+` FROM approval_tasks WHERE id = ?`+r.db.ForUpdate(), id)
}

func (r *TaskRepositorySQL) get(ctx context.Context, q, id string) (*models.ApprovalTask, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx, r.db.Rebind(q), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("task %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (r *TaskRepositorySQL) ListPending(ctx context.Context) ([]models.ApprovalTask, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM approval_tasks
		WHERE status = ? ORDER BY created_at, id`, string(models.TaskStatusPending))
}

func (r *TaskRepositorySQL) ListByApprover(ctx context.Context, approverID string, status models.TaskStatus) ([]models.ApprovalTask, error) {
	if status == "" {
		return r.query(ctx, `SELECT `+taskColumns+` FROM approval_tasks
			WHERE approver_id = ? ORDER BY created_at, id`, approverID)
	}
	return r.query(ctx, `SELECT `+taskColumns+` FROM approval_tasks
		WHERE approver_id = ? AND status = ? ORDER BY created_at, id`, approverID, string(status))
}

func (r *TaskRepositorySQL) ListByRequester(ctx context.Context, requesterID string) ([]models.ApprovalTask, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM approval_tasks
		WHERE requester_id = ? ORDER BY created_at DESC, id`, requesterID)
}

func (r *TaskRepositorySQL) query(ctx context.Context, q string, args ...any) ([]models.ApprovalTask, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []models.ApprovalTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepositorySQL) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, at time.Time) error {
	return r.updatePending(ctx, id, `status = ?, updated_at = ?`, string(status), models.Normalize(at))
}

func (r *TaskRepositorySQL) UpdateSnooze(ctx context.Context, id string, until time.Time, at time.Time) error {
	return r.updatePending(ctx, id, `snooze_until = ?, updated_at = ?`, models.Normalize(until), models.Normalize(at))
}

func (r *TaskRepositorySQL) UpdateApprover(ctx context.Context, id string, approverID string, at time.Time) error {
	return r.updatePending(ctx, id, `approver_id = ?, updated_at = ?`, approverID, models.Normalize(at))
}

// updatePending applies set only while the task is PENDING.
func (r *TaskRepositorySQL) updatePending(ctx context.Context, id, set string, args ...any) error {
	args = append(args, id, string(models.TaskStatusPending))
	res, err := r.db.Querier(ctx).ExecContext(ctx, r.db.Rebind(`
		UPDATE approval_tasks SET `+set+`
		WHERE id = ? AND status = ?`), args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if n == 0 {
		return apperr.InvalidState("task %s is no longer pending", id)
	}
	return nil
}

func prepareTask(task *models.ApprovalTask) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Urgency == "" {
		task.Urgency = models.UrgencyMedium
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = models.Now()
	} else {
		task.CreatedAt = models.Normalize(task.CreatedAt)
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	} else {
		task.UpdatedAt = models.Normalize(task.UpdatedAt)
	}
}
