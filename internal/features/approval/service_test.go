package approval

import (
	"context"
	"testing"
	"time"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"
	"go-approvals/internal/features/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.requester.ID, CreateTaskInput{
		Title:       "  Conference travel ",
		Description: "Berlin, 3 days",
		Urgency:     "high",
		ApproverID:  f.approver.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Conference travel", task.Title)
	assert.Equal(t, models.UrgencyHigh, task.Urgency)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.True(t, task.CreatedAt.Equal(t0))

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, f.approver.ID, stored.ApproverID)

	logs, err := f.audit.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionCreated, logs[0].Action)
	require.NotNil(t, logs[0].PerformedBy)
	assert.Equal(t, f.requester.ID, *logs[0].PerformedBy)

	msgs := f.recorder.ByTemplate(notification.TemplateApprovalRequested)
	require.Len(t, msgs, 1)
	assert.Equal(t, f.approver.ID, msgs[0].Recipients[0].ID)
	assert.Equal(t, "erin", msgs[0].Params["requester"])
}

func TestCreateDefaultsUrgencyToMedium(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "")
	assert.Equal(t, models.UrgencyMedium, task.Urgency)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateTaskInput
		want  error
	}{
		{"missing title", CreateTaskInput{ApproverID: f.approver.ID}, apperr.ErrValidation},
		{"unknown urgency", CreateTaskInput{Title: "x", Urgency: "URGENT", ApproverID: f.approver.ID}, apperr.ErrValidation},
		{"header injection in title", CreateTaskInput{Title: "Laptop\r\nBcc: attacker@evil.test", ApproverID: f.approver.ID}, apperr.ErrValidation},
		{"missing approver", CreateTaskInput{Title: "x"}, apperr.ErrValidation},
		{"unknown approver", CreateTaskInput{Title: "x", ApproverID: "nobody"}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.requester.ID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	pending, err := f.tasks.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Empty(t, f.recorder.Messages())
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "LOW")
	f.now = t0.Add(time.Hour)

	got, err := f.svc.Approve(context.Background(), task.ID, f.approver.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusApproved, got.Status)
	assert.True(t, got.UpdatedAt.Equal(f.now))

	logs, err := f.audit.ListByTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionApproved, logs[1].Action)
	assert.Equal(t, defaultApproveRemarks, logs[1].Remarks)

	msgs := f.recorder.ByTemplate(notification.TemplateApprovalApproved)
	require.Len(t, msgs, 1)
	assert.Equal(t, f.requester.ID, msgs[0].Recipients[0].ID)
	assert.Equal(t, "mona", msgs[0].Params["actor"])
}

func TestApproveByNonApproverIsForbidden(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "HIGH")

	for _, actor := range []*models.User{f.requester, f.outsider, f.admin} {
		_, err := f.svc.Approve(context.Background(), task.ID, actor.ID, "ok")
		assert.ErrorIs(t, err, apperr.ErrForbidden, actor.Username)
	}

	stored, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, stored.Status)
	assert.Equal(t, []models.AuditAction{models.AuditActionCreated}, f.actions(t, task.ID))
	assert.Empty(t, f.recorder.Messages())
}

func TestApproveUnknownTask(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Approve(context.Background(), "missing", f.approver.ID, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDecisionOnTerminalTaskIsInvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "MEDIUM")

	_, err := f.svc.Reject(ctx, task.ID, f.approver.ID, "budget frozen")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, task.ID, f.approver.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = f.svc.Reject(ctx, task.ID, f.approver.ID, "again")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = f.svc.Snooze(ctx, task.ID, f.approver.ID, 4)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	assert.Equal(t, []models.AuditAction{models.AuditActionCreated, models.AuditActionRejected}, f.actions(t, task.ID))
}

func TestRejectRequiresComment(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "MEDIUM")

	for _, comment := range []string{"", "   "} {
		_, err := f.svc.Reject(context.Background(), task.ID, f.approver.ID, comment)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}

	stored, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, stored.Status)
	assert.Equal(t, []models.AuditAction{models.AuditActionCreated}, f.actions(t, task.ID))
	assert.Empty(t, f.recorder.Messages())
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "MEDIUM")

	got, err := f.svc.Reject(context.Background(), task.ID, f.approver.ID, "Not in budget")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRejected, got.Status)

	logs, err := f.audit.ListByTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Not in budget", logs[len(logs)-1].Remarks)

	msgs := f.recorder.ByTemplate(notification.TemplateApprovalRejected)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Not in budget", msgs[0].Params["remarks"])
}

func TestSnooze(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "CRITICAL")

	for _, hours := range []int{0, -3} {
		_, err := f.svc.Snooze(ctx, task.ID, f.approver.ID, hours)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
	_, err := f.svc.Snooze(ctx, task.ID, f.requester.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := f.svc.Snooze(ctx, task.ID, f.approver.ID, 6)
	require.NoError(t, err)
	require.NotNil(t, got.SnoozeUntil)
	assert.True(t, got.SnoozeUntil.Equal(t0.Add(6*time.Hour)))

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SnoozeUntil)
	assert.True(t, stored.SnoozeUntil.Equal(t0.Add(6*time.Hour)))
	assert.Equal(t, models.TaskStatusPending, stored.Status)

	logs, err := f.audit.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionSnoozed, logs[1].Action)
	assert.Equal(t, "Snoozed for 6 hours", logs[1].Remarks)
}

func TestAuditTimelineVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "HIGH")
	f.now = t0.Add(time.Minute)
	_, err := f.svc.Approve(ctx, task.ID, f.approver.ID, "fine")
	require.NoError(t, err)

	for _, actor := range []*models.User{f.requester, f.approver, f.admin} {
		logs, err := f.svc.AuditTimeline(ctx, task.ID, actor.ID)
		require.NoError(t, err, actor.Username)
		require.Len(t, logs, 2)
		assert.Equal(t, models.AuditActionCreated, logs[0].Action)
		assert.Equal(t, "erin", logs[0].ActorName)
		assert.Equal(t, models.AuditActionApproved, logs[1].Action)
	}

	_, err = f.svc.AuditTimeline(ctx, task.ID, f.outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.svc.AuditTimeline(ctx, task.ID, "ghost")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.svc.AuditTimeline(ctx, "missing", f.admin.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "LOW")

	got, err := f.svc.Get(context.Background(), task.ID, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = f.svc.Get(context.Background(), task.ID, f.outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestExportTimeline(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "LOW")

	data, name, err := f.svc.ExportTimeline(context.Background(), task.ID, f.requester.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "task-"+task.ID+"-audit.xlsx", name)

	_, _, err = f.svc.ExportTimeline(context.Background(), task.ID, f.outsider.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDashboardBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fresh := f.createTask(t, "LOW")
	f.now = t0.Add(-30 * time.Hour)
	aging := f.createTask(t, "LOW")
	f.now = t0.Add(-72 * time.Hour)
	stale := f.createTask(t, "LOW")
	f.now = t0.Add(-2 * time.Hour)
	done := f.createTask(t, "LOW")
	_, err := f.svc.Approve(ctx, done.ID, f.approver.ID, "")
	require.NoError(t, err)

	f.now = t0.Add(time.Hour)
	board, err := f.svc.Dashboard(ctx, f.approver.ID)
	require.NoError(t, err)
	assert.Len(t, board.Assigned, 3)
	assert.Equal(t, []string{fresh.ID}, board.SLA[SLAGreen])
	assert.Equal(t, []string{aging.ID}, board.SLA[SLAYellow])
	assert.Equal(t, []string{stale.ID}, board.SLA[SLARed])
	assert.Empty(t, board.Created)

	mine, err := f.svc.Dashboard(ctx, f.requester.ID)
	require.NoError(t, err)
	assert.Empty(t, mine.Assigned)
	assert.Len(t, mine.Created, 4)
}

func TestBucketFor(t *testing.T) {
	task := &models.ApprovalTask{CreatedAt: t0}
	assert.Equal(t, SLAGreen, BucketFor(task, t0.Add(23*time.Hour)))
	assert.Equal(t, SLAYellow, BucketFor(task, t0.Add(24*time.Hour)))
	assert.Equal(t, SLAYellow, BucketFor(task, t0.Add(47*time.Hour)))
	assert.Equal(t, SLARed, BucketFor(task, t0.Add(48*time.Hour)))
}
