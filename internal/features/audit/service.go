package audit

import (
	"context"
	"time"

	"go-approvals/internal/common/models"
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type AuditService interface {
	// Record appends one entry stamped with at. A nil performedBy marks a
	// system entry.
	Record(ctx context.Context, taskID string, action models.AuditAction, performedBy *string, at time.Time, remarks string) (*models.AuditLog, error)
	// Timeline returns the task's entries oldest first with actor names resolved.
	Timeline(ctx context.Context, taskID string) ([]models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) Record(ctx context.Context, taskID string, action models.AuditAction, performedBy *string, at time.Time, remarks string) (*models.AuditLog, error) {
	log := &models.AuditLog{
		TaskID:      taskID,
		Action:      action,
		PerformedBy: performedBy,
		Timestamp:   at,
		Remarks:     remarks,
	}
	if err := s.Repo.Append(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *AuditServiceImpl) Timeline(ctx context.Context, taskID string) ([]models.AuditLog, error) {
	logs, err := s.Repo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// Collect Actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.PerformedBy != nil && !uniqueIDs[*log.PerformedBy] {
			uniqueIDs[*log.PerformedBy] = true
			actorIDs = append(actorIDs, *log.PerformedBy)
		}
	}

	// Batch Fetch Users
	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			for _, user := range users {
				userMap[user.ID] = user.Username
			}
		}
	}

	// Populate Actor Names
	for i, log := range logs {
		if log.System() {
			logs[i].ActorName = "System"
		} else if name, ok := userMap[*log.PerformedBy]; ok {
			logs[i].ActorName = name
		} else {
			logs[i].ActorName = "Unknown User"
		}
	}

	return logs, nil
}
