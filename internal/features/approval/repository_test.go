package approval

import (
	"context"
	"testing"
	"time"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepository_ConditionalUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := &models.ApprovalTask{Title: "t", RequesterID: f.requester.ID, ApproverID: f.approver.ID, CreatedAt: t0}
	require.NoError(t, f.tasks.Create(ctx, task))
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, models.UrgencyMedium, task.Urgency)

	require.NoError(t, f.tasks.UpdateApprover(ctx, task.ID, f.admin.ID, t0.Add(time.Hour)))
	require.NoError(t, f.tasks.UpdateStatus(ctx, task.ID, models.TaskStatusApproved, t0.Add(2*time.Hour)))

	err := f.tasks.UpdateStatus(ctx, task.ID, models.TaskStatusRejected, t0.Add(3*time.Hour))
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	err = f.tasks.UpdateSnooze(ctx, task.ID, t0.Add(10*time.Hour), t0.Add(3*time.Hour))
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	stored, err := f.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusApproved, stored.Status)
	assert.Equal(t, f.admin.ID, stored.ApproverID)
	assert.Nil(t, stored.SnoozeUntil)
	assert.True(t, stored.UpdatedAt.Equal(t0.Add(2*time.Hour)))
	assert.True(t, stored.CreatedAt.Equal(t0))
}

func TestTaskRepository_ListPendingOrdersByCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		task := &models.ApprovalTask{Title: "t", RequesterID: f.requester.ID, ApproverID: f.approver.ID, CreatedAt: t0.Add(offset)}
		require.NoError(t, f.tasks.Create(ctx, task))
		ids = append(ids, task.ID)
	}
	require.NoError(t, f.tasks.UpdateStatus(ctx, ids[2], models.TaskStatusRejected, t0.Add(3*time.Hour)))

	pending, err := f.tasks.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[1], pending[0].ID)
	assert.Equal(t, ids[0], pending[1].ID)

	all, err := f.tasks.ListByApprover(ctx, f.approver.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTaskRepository_GetForUpdateInsideTx(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := &models.ApprovalTask{Title: "t", RequesterID: f.requester.ID, ApproverID: f.approver.ID, CreatedAt: t0}
	require.NoError(t, f.tasks.Create(ctx, task))

	err := f.db.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := f.tasks.GetForUpdate(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, locked.ID)

		_, err = f.tasks.GetForUpdate(ctx, "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}
