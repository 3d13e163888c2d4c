package approval

import (
	"context"
	"errors"
	"time"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepositoryMongo struct {
	Collection *mongo.Collection
}

func (r *TaskRepositoryMongo) Create(ctx context.Context, task *models.ApprovalTask) error {
	prepareTask(task)
	_, err := r.Collection.InsertOne(ctx, task)
	return err
}

func (r *TaskRepositoryMongo) GetByID(ctx context.Context, id string) (*models.ApprovalTask, error) {
	var task models.ApprovalTask
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("task %s", id)
		}
		return nil, err
	}
	return &task, nil
}

// GetForUpdate has no row lock on MongoDB. Writes inside the session
// transaction stay guarded by the status filter in updatePending.
func (r *TaskRepositoryMongo) GetForUpdate(ctx context.Context, id string) (*models.ApprovalTask, error) {
	return r.GetByID(ctx, id)
}

func (r *TaskRepositoryMongo) ListPending(ctx context.Context) ([]models.ApprovalTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"status": models.TaskStatusPending}, opts)
}

func (r *TaskRepositoryMongo) ListByApprover(ctx context.Context, approverID string, status models.TaskStatus) ([]models.ApprovalTask, error) {
	filter := bson.M{"approver_id": approverID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *TaskRepositoryMongo) ListByRequester(ctx context.Context, requesterID string) ([]models.ApprovalTask, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"requester_id": requesterID}, opts)
}

func (r *TaskRepositoryMongo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ApprovalTask, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.ApprovalTask{}
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepositoryMongo) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, at time.Time) error {
	return r.updatePending(ctx, id, bson.M{"status": status, "updated_at": models.Normalize(at)})
}

func (r *TaskRepositoryMongo) UpdateSnooze(ctx context.Context, id string, until time.Time, at time.Time) error {
	return r.updatePending(ctx, id, bson.M{"snooze_until": models.Normalize(until), "updated_at": models.Normalize(at)})
}

func (r *TaskRepositoryMongo) UpdateApprover(ctx context.Context, id string, approverID string, at time.Time) error {
	return r.updatePending(ctx, id, bson.M{"approver_id": approverID, "updated_at": models.Normalize(at)})
}

func (r *TaskRepositoryMongo) updatePending(ctx context.Context, id string, set bson.M) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.TaskStatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.InvalidState("task %s is no longer pending", id)
	}
	return nil
}
