package approval

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go-approvals/internal/clock"
	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"
	"go-approvals/internal/database"
	"go-approvals/internal/features/audit"
	"go-approvals/internal/features/notification"
	"go-approvals/internal/tracing"

	"go.uber.org/zap"
)

const defaultApproveRemarks = "Approved without comment"

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ApprovalService is the action surface of approval tasks. Every mutation
// and its audit entry commit together; notifications follow the commit.
type ApprovalService interface {
	Create(ctx context.Context, requesterID string, input CreateTaskInput) (*models.ApprovalTask, error)
	Get(ctx context.Context, taskID, actorID string) (*models.ApprovalTask, error)
	Approve(ctx context.Context, taskID, actorID, comment string) (*models.ApprovalTask, error)
	Reject(ctx context.Context, taskID, actorID, comment string) (*models.ApprovalTask, error)
	Snooze(ctx context.Context, taskID, actorID string, hours int) (*models.ApprovalTask, error)
	AuditTimeline(ctx context.Context, taskID, actorID string) ([]models.AuditLog, error)
	ExportTimeline(ctx context.Context, taskID, actorID string) ([]byte, string, error)
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
}

type ApprovalServiceImpl struct {
	Tx       database.Transactor
	Tasks    TaskRepository
	Users    UserFinder
	Audit    audit.AuditService
	Notifier notification.Notifier
	Clock    clock.Clock
	Logger   *zap.Logger
}

func NewApprovalService(
	tx database.Transactor,
	tasks TaskRepository,
	users UserFinder,
	auditService audit.AuditService,
	notifier notification.Notifier,
	clk clock.Clock,
	logger *zap.Logger,
) ApprovalService {
	return &ApprovalServiceImpl{
		Tx:       tx,
		Tasks:    tasks,
		Users:    users,
		Audit:    auditService,
		Notifier: notifier,
		Clock:    clk,
		Logger:   logger,
	}
}

func (s *ApprovalServiceImpl) Create(ctx context.Context, requesterID string, input CreateTaskInput) (task *models.ApprovalTask, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.create", map[string]string{"actor.id": requesterID})
	defer func() { tracing.EndSpan(span, err) }()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if strings.IndexFunc(title, unicode.IsControl) >= 0 {
		return nil, apperr.Validation("title must not contain control characters")
	}
	urgency, ok := models.ParseUrgency(input.Urgency)
	if !ok {
		return nil, apperr.Validation("unknown urgency %q", input.Urgency)
	}
	if strings.TrimSpace(input.ApproverID) == "" {
		return nil, apperr.Validation("approver_id is required")
	}

	requester, err := s.Users.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	approver, err := s.Users.FindByID(ctx, input.ApproverID)
	if err != nil {
		return nil, err
	}

	now := s.Clock()
	task = &models.ApprovalTask{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		RequesterID: requester.ID,
		ApproverID:  approver.ID,
		Urgency:     urgency,
		Status:      models.TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Tasks.Create(ctx, task); err != nil {
			return err
		}
		_, err := s.Audit.Record(ctx, task.ID, models.AuditActionCreated, &requester.ID, now, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("approval task created",
		zap.String("task_id", task.ID),
		zap.String("approver_id", approver.ID),
		zap.String("urgency", string(urgency)),
	)
	s.Notifier.Notify(ctx, notification.NewMessage(notification.TemplateApprovalRequested, task,
		map[string]string{"requester": requester.Username}, *approver))

	return task, nil
}

func (s *ApprovalServiceImpl) Get(ctx context.Context, taskID, actorID string) (task *models.ApprovalTask, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.get", map[string]string{"task.id": taskID, "actor.id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	return s.visibleTask(ctx, taskID, actorID)
}

func (s *ApprovalServiceImpl) Approve(ctx context.Context, taskID, actorID, comment string) (task *models.ApprovalTask, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.approve", map[string]string{"task.id": taskID, "actor.id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	remarks := strings.TrimSpace(comment)
	if remarks == "" {
		remarks = defaultApproveRemarks
	}
	return s.decide(ctx, taskID, actorID, models.TaskStatusApproved, models.AuditActionApproved, remarks)
}

func (s *ApprovalServiceImpl) Reject(ctx context.Context, taskID, actorID, comment string) (task *models.ApprovalTask, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.reject", map[string]string{"task.id": taskID, "actor.id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	remarks := strings.TrimSpace(comment)
	if remarks == "" {
		return nil, apperr.Validation("a rejection comment is required")
	}
	return s.decide(ctx, taskID, actorID, models.TaskStatusRejected, models.AuditActionRejected, remarks)
}

// decide moves a PENDING task to a terminal status on behalf of its approver.
func (s *ApprovalServiceImpl) decide(ctx context.Context, taskID, actorID string, status models.TaskStatus, action models.AuditAction, remarks string) (*models.ApprovalTask, error) {
	now := s.Clock()

	var task *models.ApprovalTask
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.pendingForApprover(ctx, taskID, actorID)
		if err != nil {
			return err
		}
		if err := s.Tasks.UpdateStatus(ctx, t.ID, status, now); err != nil {
			return err
		}
		if _, err := s.Audit.Record(ctx, t.ID, action, &actorID, now, remarks); err != nil {
			return err
		}
		t.Status = status
		t.UpdatedAt = now
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("approval task decided",
		zap.String("task_id", task.ID),
		zap.String("status", string(status)),
		zap.String("actor_id", actorID),
	)

	template := notification.TemplateApprovalApproved
	if status == models.TaskStatusRejected {
		template = notification.TemplateApprovalRejected
	}
	s.notifyUser(ctx, task.RequesterID, func(requester models.User) notification.Message {
		return notification.NewMessage(template, task, map[string]string{
			"actor":   s.username(ctx, actorID),
			"remarks": remarks,
		}, requester)
	})

	return task, nil
}

func (s *ApprovalServiceImpl) Snooze(ctx context.Context, taskID, actorID string, hours int) (task *models.ApprovalTask, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.snooze", map[string]string{
		"task.id": taskID, "actor.id": actorID, "snooze.hours": fmt.Sprint(hours),
	})
	defer func() { tracing.EndSpan(span, err) }()

	if hours <= 0 {
		return nil, apperr.Validation("snooze hours must be positive, got %d", hours)
	}

	now := s.Clock()
	until := now.Add(time.Duration(hours) * time.Hour)

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.pendingForApprover(ctx, taskID, actorID)
		if err != nil {
			return err
		}
		if err := s.Tasks.UpdateSnooze(ctx, t.ID, until, now); err != nil {
			return err
		}
		remarks := fmt.Sprintf("Snoozed for %d hours", hours)
		if _, err := s.Audit.Record(ctx, t.ID, models.AuditActionSnoozed, &actorID, now, remarks); err != nil {
			return err
		}
		t.SnoozeUntil = &until
		t.UpdatedAt = now
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("approval task snoozed",
		zap.String("task_id", task.ID),
		zap.Time("snooze_until", until),
	)
	return task, nil
}

func (s *ApprovalServiceImpl) AuditTimeline(ctx context.Context, taskID, actorID string) (logs []models.AuditLog, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.audit_timeline", map[string]string{"task.id": taskID, "actor.id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	task, err := s.visibleTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	return s.Audit.Timeline(ctx, task.ID)
}

func (s *ApprovalServiceImpl) ExportTimeline(ctx context.Context, taskID, actorID string) (data []byte, filename string, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.export_timeline", map[string]string{"task.id": taskID, "actor.id": actorID})
	defer func() { tracing.EndSpan(span, err) }()

	task, err := s.visibleTask(ctx, taskID, actorID)
	if err != nil {
		return nil, "", err
	}
	logs, err := s.Audit.Timeline(ctx, task.ID)
	if err != nil {
		return nil, "", err
	}
	return audit.ExportTimeline(task, logs)
}

func (s *ApprovalServiceImpl) Dashboard(ctx context.Context, userID string) (board *Dashboard, err error) {
	ctx, span := tracing.StartSpan(ctx, "approval.dashboard", map[string]string{"actor.id": userID})
	defer func() { tracing.EndSpan(span, err) }()

	assigned, err := s.Tasks.ListByApprover(ctx, userID, models.TaskStatusPending)
	if err != nil {
		return nil, err
	}
	created, err := s.Tasks.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Clock()
	board = &Dashboard{
		Assigned: assigned,
		Created:  created,
		SLA: map[SLABucket][]string{
			SLAGreen:  {},
			SLAYellow: {},
			SLARed:    {},
		},
	}
	for i := range assigned {
		bucket := BucketFor(&assigned[i], now)
		board.SLA[bucket] = append(board.SLA[bucket], assigned[i].ID)
	}
	return board, nil
}

// pendingForApprover locks the task and checks the actor may act on it.
func (s *ApprovalServiceImpl) pendingForApprover(ctx context.Context, taskID, actorID string) (*models.ApprovalTask, error) {
	t, err := s.Tasks.GetForUpdate(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.ApproverID != actorID {
		return nil, apperr.Forbidden("only the assigned approver can act on task %s", taskID)
	}
	if t.Status.Terminal() {
		return nil, apperr.InvalidState("task %s is already %s", taskID, t.Status)
	}
	return t, nil
}

// visibleTask returns the task if actor is its requester, its approver or an admin.
func (s *ApprovalServiceImpl) visibleTask(ctx context.Context, taskID, actorID string) (*models.ApprovalTask, error) {
	task, err := s.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.RequesterID == actorID || task.ApproverID == actorID {
		return task, nil
	}

	actor, err := s.Users.FindByID(ctx, actorID)
	if err != nil || !actor.IsAdmin() {
		return nil, apperr.Forbidden("user %s cannot view task %s", actorID, taskID)
	}
	return task, nil
}

func (s *ApprovalServiceImpl) notifyUser(ctx context.Context, userID string, build func(models.User) notification.Message) {
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		s.Logger.Warn("notification recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.Notifier.Notify(ctx, build(*u))
}

func (s *ApprovalServiceImpl) username(ctx context.Context, userID string) string {
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return userID
	}
	return u.Username
}
