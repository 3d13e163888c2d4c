package user

import (
	"context"
	"errors"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepositoryMongo struct {
	Collection *mongo.Collection
}

func (r *UserRepositoryMongo) Create(ctx context.Context, user *models.User) error {
	prepareUser(user)
	_, err := r.Collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryMongo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "user "+id)
}

func (r *UserRepositoryMongo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, "user "+username)
}

func (r *UserRepositoryMongo) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	var user models.User
	err := r.Collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("%s", what)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryMongo) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

func (r *UserRepositoryMongo) FindFirstByRole(ctx context.Context, role models.Role) (*models.User, error) {
	filter := bson.M{"role": role}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	var user models.User
	err := r.Collection.FindOne(ctx, filter, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryMongo) ListByRoles(ctx context.Context, roles []models.Role) ([]models.User, error) {
	if len(roles) == 0 {
		return []models.User{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	return r.find(ctx, bson.M{"role": bson.M{"$in": roles}}, opts)
}

func (r *UserRepositoryMongo) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *UserRepositoryMongo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
