package user

import (
	"context"
	"strings"

	"go-approvals/internal/common/apperr"
	"go-approvals/internal/common/models"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// ListApprovers returns the users selectable as approver (MANAGER or ADMIN).
	ListApprovers(ctx context.Context) ([]models.User, error)
}

type UserServiceImpl struct {
	UserRepo UserRepository
}

func NewUserService(userRepo UserRepository) UserService {
	return &UserServiceImpl{UserRepo: userRepo}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, user *models.User) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return apperr.Validation("username is required")
	}
	if user.Role == "" {
		user.Role = models.RoleEmployee
	}
	user.Role = models.Role(strings.ToUpper(string(user.Role)))
	if !user.Role.Valid() {
		return apperr.Validation("unknown role %q", user.Role)
	}
	user.Email = strings.TrimSpace(user.Email)

	return s.UserRepo.Create(ctx, user)
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.UserRepo.FindByUsername(ctx, username)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.UserRepo.List(ctx)
}

func (s *UserServiceImpl) ListApprovers(ctx context.Context) ([]models.User, error) {
	return s.UserRepo.ListByRoles(ctx, []models.Role{models.RoleManager, models.RoleAdmin})
}
