package approval

import (
	"context"
	"time"

	"go-approvals/internal/common/models"
	"go-approvals/internal/database"
)

// TaskRepository persists approval tasks. Every mutation is guarded on the
// task still being PENDING and fails with apperr.ErrInvalidState otherwise.
type TaskRepository interface {
	Create(ctx context.Context, task *models.ApprovalTask) error
	GetByID(ctx context.Context, id string) (*models.ApprovalTask, error)
	// GetForUpdate reads the task and locks it until the surrounding
	// transaction ends, where the backend supports row locks.
	GetForUpdate(ctx context.Context, id string) (*models.ApprovalTask, error)
	// ListPending returns PENDING tasks oldest first.
	ListPending(ctx context.Context) ([]models.ApprovalTask, error)
	// ListByApprover filters by status unless status is empty.
	ListByApprover(ctx context.Context, approverID string, status models.TaskStatus) ([]models.ApprovalTask, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.ApprovalTask, error)
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus, at time.Time) error
	UpdateSnooze(ctx context.Context, id string, until time.Time, at time.Time) error
	UpdateApprover(ctx context.Context, id string, approverID string, at time.Time) error
}

func NewTaskRepository(db *database.Database) TaskRepository {
	if db.IsMongo() {
		return &TaskRepositoryMongo{Collection: db.Mongo.Collection(database.TasksTable)}
	}
	return &TaskRepositorySQL{db: db}
}
