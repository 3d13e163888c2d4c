package audit

import (
	"context"

	"go-approvals/internal/common/models"
	"go-approvals/internal/database"
)

// AuditRepository is append-only: entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, log *models.AuditLog) error
	// ListByTask returns entries oldest first.
	ListByTask(ctx context.Context, taskID string) ([]models.AuditLog, error)
	// LatestByAction returns nil, nil when the task has no entry for action.
	LatestByAction(ctx context.Context, taskID string, action models.AuditAction) (*models.AuditLog, error)
	ExistsByAction(ctx context.Context, taskID string, action models.AuditAction) (bool, error)
}

func NewAuditRepository(db *database.Database) AuditRepository {
	if db.IsMongo() {
		return &AuditRepositoryMongo{Collection: db.Mongo.Collection(database.AuditLogsTable)}
	}
	return &AuditRepositorySQL{db: db}
}
