package service

import (
	"context"
	"fmt"
	"time"

	"attendance-bot/internal/clock"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
)

const DefaultActiveUserDays = 30

type UserService struct {
	repo       repository.UserRepository
	clock      clock.Clock
	activeDays int
}

func NewUserService(repo repository.UserRepository, clk clock.Clock, activeDays int) *UserService {
	if activeDays <= 0 {
		activeDays = DefaultActiveUserDays
	}
	return &UserService{repo: repo, clock: clk, activeDays: activeDays}
}

// Touch creates the user or refreshes its last activity time.
func (s *UserService) Touch(ctx context.Context, userID, name, department string) error {
	if userID == "" {
		return &ValidationError{Reason: "user id is required"}
	}

	user := &models.User{
		UserID:     userID,
		UserName:   name,
		Department: department,
		LastActive: s.clock.Now(),
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Reason: "사용자를 찾을 수 없습니다"}
	}
	return user, nil
}

// ListActiveUsers returns users seen within the active window.
func (s *UserService) ListActiveUsers(ctx context.Context) ([]*models.User, error) {
	since := s.clock.Now().Add(-time.Duration(s.activeDays) * 24 * time.Hour)
	users, err := s.repo.ListActive(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return users, nil
}

// GetAllUsers returns every known user.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAll(ctx)
}
