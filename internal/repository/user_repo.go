package repository

import (
	"context"
	"errors"
	"time"

	"attendance-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	Get(ctx context.Context, userID string) (*models.User, error)
	ListActive(ctx context.Context, since time.Time) ([]*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) (*GormUserRepository, error) {
	// Auto-migrate creates the table if it is missing
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, err
	}

	return &GormUserRepository{db: db}, nil
}

// Upsert creates the user or refreshes LastActive. Non-empty name and
// department overwrite the stored values; empty ones leave them untouched.
func (r *GormUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		return errors.New("user id is required")
	}
	if user.LastActive.IsZero() {
		user.LastActive = time.Now()
	}

	updates := map[string]interface{}{
		"last_active": user.LastActive,
	}
	if user.UserName != "" {
		updates["user_name"] = user.UserName
	}
	if user.Department != "" {
		updates["department"] = user.Department
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(user).Error
}

func (r *GormUserRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// ListActive returns users seen at or after since, most recent first.
func (r *GormUserRepository) ListActive(ctx context.Context, since time.Time) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).
		Where("last_active >= ?", since).
		Order("last_active DESC").
		Find(&users)

	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (r *GormUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).Order("user_id ASC").Find(&users)

	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}
