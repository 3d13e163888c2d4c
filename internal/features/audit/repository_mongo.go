package audit

import (
	"context"
	"errors"

	"go-approvals/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepositoryMongo struct {
	Collection *mongo.Collection
}

func (r *AuditRepositoryMongo) Append(ctx context.Context, log *models.AuditLog) error {
	prepareLog(log)
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *AuditRepositoryMongo) ListByTask(ctx context.Context, taskID string) ([]models.AuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.Collection.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []models.AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *AuditRepositoryMongo) LatestByAction(ctx context.Context, taskID string, action models.AuditAction) (*models.AuditLog, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})

	var log models.AuditLog
	err := r.Collection.FindOne(ctx, bson.M{"task_id": taskID, "action": action}, opts).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *AuditRepositoryMongo) ExistsByAction(ctx context.Context, taskID string, action models.AuditAction) (bool, error) {
	n, err := r.Collection.CountDocuments(ctx, bson.M{"task_id": taskID, "action": action}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
