package approval

import (
	"context"
	"testing"
	"time"

	"go-approvals/internal/common/models"
	"go-approvals/internal/database"
	"go-approvals/internal/database/dbtest"
	"go-approvals/internal/features/audit"
	"go-approvals/internal/features/notification"
	"go-approvals/internal/features/user"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db       *database.Database
	svc      ApprovalService
	tasks    TaskRepository
	users    user.UserRepository
	audit    audit.AuditRepository
	recorder *notification.Recorder
	now      time.Time

	requester *models.User
	approver  *models.User
	outsider  *models.User
	admin     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.NewSQLite(t)
	f := &fixture{
		db:       db,
		tasks:    NewTaskRepository(db),
		users:    user.NewUserRepository(db),
		audit:    audit.NewAuditRepository(db),
		recorder: notification.NewRecorder(),
		now:      t0,
	}
	f.svc = NewApprovalService(
		db,
		f.tasks,
		f.users,
		audit.NewAuditService(f.audit, f.users),
		f.recorder,
		func() time.Time { return f.now },
		zap.NewNop(),
	)

	f.requester = f.addUser(t, "erin", models.RoleEmployee, "erin@example.com")
	f.approver = f.addUser(t, "mona", models.RoleManager, "mona@example.com")
	f.outsider = f.addUser(t, "otto", models.RoleEmployee, "")
	f.admin = f.addUser(t, "adam", models.RoleAdmin, "adam@example.com")
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role models.Role, email string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Role: role, Email: email, CreatedAt: t0.Add(-24 * time.Hour)}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) createTask(t *testing.T, urgency string) *models.ApprovalTask {
	t.Helper()
	task, err := f.svc.Create(context.Background(), f.requester.ID, CreateTaskInput{
		Title:      "New laptop",
		Urgency:    urgency,
		ApproverID: f.approver.ID,
	})
	require.NoError(t, err)
	f.recorder.Reset()
	return task
}

func (f *fixture) actions(t *testing.T, taskID string) []models.AuditAction {
	t.Helper()
	logs, err := f.audit.ListByTask(context.Background(), taskID)
	require.NoError(t, err)
	out := make([]models.AuditAction, len(logs))
	for i, l := range logs {
		out[i] = l.Action
	}
	return out
}
