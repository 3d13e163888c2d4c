package reminder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go-approvals/internal/common/models"
	"go-approvals/internal/database"
	"go-approvals/internal/features/approval"
	"go-approvals/internal/features/audit"
	"go-approvals/internal/features/notification"
	"go-approvals/internal/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindFirstByRole(ctx context.Context, role models.Role) (*models.User, error)
}

// CycleReport summarizes one pass over the pending tasks.
type CycleReport struct {
	RunID          string    `json:"run_id"`
	At             time.Time `json:"at"`
	Scanned        int       `json:"scanned"`
	Snoozed        int       `json:"snoozed"`
	Reminded       int       `json:"reminded"`
	Escalated      int       `json:"escalated"`
	SkippedNoAdmin int       `json:"skipped_no_admin"`
	Failed         int       `json:"failed"`
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeSnoozed
	outcomeReminded
	outcomeEscalated
	outcomeNoAdmin
)

// Engine decides, per pending task, whether to remind the approver or
// escalate to an admin.
type Engine struct {
	tx       database.Transactor
	tasks    approval.TaskRepository
	audit    audit.AuditRepository
	users    UserFinder
	notifier notification.Notifier
	policy   atomic.Pointer[Policy]
	logger   *zap.Logger
}

func NewEngine(
	tx database.Transactor,
	tasks approval.TaskRepository,
	auditRepo audit.AuditRepository,
	users UserFinder,
	notifier notification.Notifier,
	policy Policy,
	logger *zap.Logger,
) *Engine {
	e := &Engine{
		tx:       tx,
		tasks:    tasks,
		audit:    auditRepo,
		users:    users,
		notifier: notifier,
		logger:   logger.Named("reminder"),
	}
	e.policy.Store(&policy)
	return e
}

// Policy returns the policy the next cycle will use.
func (e *Engine) Policy() Policy {
	return *e.policy.Load()
}

// SetPolicy swaps the policy. A running cycle keeps the one it started with.
func (e *Engine) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.policy.Store(&p)
	return nil
}

// RunCycle evaluates every pending task at now. A failing task is logged and
// counted; only a failed scan aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context, now time.Time) (report CycleReport, err error) {
	now = models.Normalize(now)
	report = CycleReport{RunID: uuid.New().String(), At: now}
	policy := e.Policy()

	ctx, span := tracing.StartSpan(ctx, "reminder.cycle", map[string]string{
		"run.id": report.RunID,
		"at":     now.Format(time.RFC3339),
	})
	defer func() { tracing.EndSpan(span, err) }()

	pending, err := e.tasks.ListPending(ctx)
	if err != nil {
		return report, fmt.Errorf("list pending tasks: %w", err)
	}
	report.Scanned = len(pending)

	for _, task := range pending {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		result, msg, err := e.processTask(ctx, policy, task.ID, now)
		if err != nil {
			report.Failed++
			e.logger.Error("reminder task failed",
				zap.String("run_id", report.RunID),
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
			continue
		}

		switch result {
		case outcomeSnoozed:
			report.Snoozed++
		case outcomeReminded:
			report.Reminded++
		case outcomeEscalated:
			report.Escalated++
		case outcomeNoAdmin:
			report.SkippedNoAdmin++
		}

		if msg != nil {
			e.notify(ctx, report.RunID, task.ID, *msg)
		}
	}

	e.logger.Info("reminder cycle finished",
		zap.String("run_id", report.RunID),
		zap.Time("at", now),
		zap.Int("scanned", report.Scanned),
		zap.Int("snoozed", report.Snoozed),
		zap.Int("reminded", report.Reminded),
		zap.Int("escalated", report.Escalated),
		zap.Int("skipped_no_admin", report.SkippedNoAdmin),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// notify hands msg to the notifier after commit. A panicking notifier is
// logged and the scan goes on.
func (e *Engine) notify(ctx context.Context, runID, taskID string, msg notification.Message) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("notifier panicked",
				zap.String("run_id", runID),
				zap.String("task_id", taskID),
				zap.String("template", string(msg.Template)),
				zap.Any("panic", r),
			)
		}
	}()
	e.notifier.Notify(ctx, msg)
}

// processTask runs the decision for one task in its own transaction. The
// returned message is sent by the caller once the transaction committed.
func (e *Engine) processTask(ctx context.Context, policy Policy, taskID string, now time.Time) (result outcome, msg *notification.Message, err error) {
	ctx, span := tracing.StartSpan(ctx, "reminder.task", map[string]string{"task.id": taskID})
	defer func() { tracing.EndSpan(span, err) }()

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		result, msg = outcomeNone, nil

		// re-read under lock: a decision may have landed since the scan
		task, err := e.tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Status != models.TaskStatusPending {
			return nil
		}
		if task.SnoozedAt(now) {
			result = outcomeSnoozed
			return nil
		}

		reference := task.CreatedAt
		last, err := e.audit.LatestByAction(ctx, task.ID, models.AuditActionReminder)
		if err != nil {
			return err
		}
		if last != nil {
			reference = last.Timestamp
		}

		if now.Sub(reference) >= policy.IntervalFor(task.Urgency) {
			m, err := e.remind(ctx, task, now)
			if err != nil {
				return err
			}
			result, msg = outcomeReminded, m
			return nil
		}

		if now.Sub(task.CreatedAt) < policy.EscalateAfter {
			return nil
		}
		escalated, err := e.audit.ExistsByAction(ctx, task.ID, models.AuditActionEscalated)
		if err != nil || escalated {
			return err
		}

		m, err := e.escalate(ctx, task, now, policy.EscalateAfter)
		if err != nil {
			return err
		}
		if m == nil {
			result = outcomeNoAdmin
			return nil
		}
		result, msg = outcomeEscalated, m
		return nil
	})
	if err != nil {
		return outcomeNone, nil, err
	}
	return result, msg, nil
}

func (e *Engine) remind(ctx context.Context, task *models.ApprovalTask, now time.Time) (*notification.Message, error) {
	approver, err := e.users.FindByID(ctx, task.ApproverID)
	if err != nil {
		return nil, fmt.Errorf("load approver: %w", err)
	}

	err = e.audit.Append(ctx, &models.AuditLog{
		TaskID:    task.ID,
		Action:    models.AuditActionReminder,
		Timestamp: now,
		Remarks:   fmt.Sprintf("Automated reminder sent to %s", approver.Username),
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("reminder recorded",
		zap.String("task_id", task.ID),
		zap.String("urgency", string(task.Urgency)),
		zap.String("approver", approver.Username),
	)
	msg := notification.NewMessage(notification.TemplateApprovalReminder, task, nil, *approver)
	return &msg, nil
}

// escalate reassigns the task to the first admin. It returns a nil message
// without error when no admin exists.
func (e *Engine) escalate(ctx context.Context, task *models.ApprovalTask, now time.Time, pendingFor time.Duration) (*notification.Message, error) {
	admin, err := e.users.FindFirstByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if admin == nil {
		e.logger.Warn("no admin available for escalation", zap.String("task_id", task.ID))
		return nil, nil
	}

	if err := e.tasks.UpdateApprover(ctx, task.ID, admin.ID, now); err != nil {
		return nil, err
	}
	err = e.audit.Append(ctx, &models.AuditLog{
		TaskID:    task.ID,
		Action:    models.AuditActionEscalated,
		Timestamp: now,
		Remarks:   fmt.Sprintf("Auto-escalated to ADMIN (%s)", admin.Username),
	})
	if err != nil {
		return nil, err
	}

	previous := task.ApproverID
	task.ApproverID = admin.ID
	task.UpdatedAt = now

	e.logger.Info("task escalated",
		zap.String("task_id", task.ID),
		zap.String("from_approver_id", previous),
		zap.String("admin", admin.Username),
	)
	msg := notification.NewMessage(notification.TemplateApprovalEscalated, task, map[string]string{
		"pending_hours": fmt.Sprintf("%.0f", pendingFor.Hours()),
	}, *admin)
	return &msg, nil
}
