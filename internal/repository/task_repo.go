package repository

import (
	"context"

	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TaskRepository interface {
	CreateTasks(ctx context.Context, tasks []*models.TaskEntry) error
	GetTasksForDate(ctx context.Context, userID, date string) ([]*models.TaskEntry, error)
	GetCategoryStats(ctx context.Context, userID, startDate, endDate string) ([]models.CategoryStat, error)
}

type GormTaskRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTaskRepository(db *gorm.DB) (*GormTaskRepository, error) {
	logger := logging.New()

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.TaskEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate task_entries table")
		return nil, err
	}

	logger.Info("Task repository initialized")

	return &GormTaskRepository{
		db:     db,
		logger: logger,
	}, nil
}

// CreateTasks stores all entries in one transaction.
func (r *GormTaskRepository) CreateTasks(ctx context.Context, tasks []*models.TaskEntry) error {
	if len(tasks) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Create(&tasks).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create task entries")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": tasks[0].UserID,
		"count":   len(tasks),
	}).Info("Task entries created")

	return nil
}

func (r *GormTaskRepository) GetTasksForDate(ctx context.Context, userID, date string) ([]*models.TaskEntry, error) {
	var tasks []*models.TaskEntry
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id ASC").
		Find(&tasks)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get tasks for date")
		return nil, result.Error
	}

	return tasks, nil
}

// GetCategoryStats sums hours per category over [startDate, endDate], largest first.
func (r *GormTaskRepository) GetCategoryStats(ctx context.Context, userID, startDate, endDate string) ([]models.CategoryStat, error) {
	var stats []models.CategoryStat
	result := r.db.WithContext(ctx).
		Model(&models.TaskEntry{}).
		Select("category, SUM(hours) AS total_hours, COUNT(*) AS task_count").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, startDate, endDate).
		Group("category").
		Order("total_hours DESC").
		Order("category ASC").
		Scan(&stats)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get category stats")
		return nil, result.Error
	}

	return stats, nil
}
