package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, email string) (*models.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register stores a directory entry, refreshing the profile when the email is
// already known. New users default to the student role.
func (s *userService) Register(ctx context.Context, user *models.User) error {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	switch user.Role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrValidation, user.Role)
	}

	if err := s.repo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
