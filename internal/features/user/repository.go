package user

import (
	"context"

	"go-approvals/internal/common/models"
	"go-approvals/internal/database"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// FindFirstByRole returns the earliest-created user with role, lowest ID
	// first on ties. Returns nil, nil when no user qualifies.
	FindFirstByRole(ctx context.Context, role models.Role) (*models.User, error)
	ListByRoles(ctx context.Context, roles []models.Role) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// NewUserRepository picks the implementation matching the configured store.
func NewUserRepository(db *database.Database) UserRepository {
	if db.IsMongo() {
		return &UserRepositoryMongo{Collection: db.Mongo.Collection(database.UsersTable)}
	}
	return &UserRepositorySQL{db: db}
}
