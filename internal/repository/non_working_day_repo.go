package repository

import (
	"context"
	"time"

	"attendance-bot/internal/models"

	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	GetBetween(ctx context.Context, startDate, endDate string) ([]models.NonWorkingDay, error)
	GetByYearMonth(ctx context.Context, year, month int) ([]models.NonWorkingDay, error)
	BulkReplace(ctx context.Context, days []models.NonWorkingDay) error
	IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error)
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (*GormNonWorkingDayRepository, error) {
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db}, nil
}

// BulkReplace swaps the stored calendar for every year present in days.
func (r *GormNonWorkingDayRepository) BulkReplace(ctx context.Context, days []models.NonWorkingDay) error {
	if len(days) == 0 {
		return nil
	}

	years := make(map[int]struct{})
	for _, d := range days {
		years[d.Year] = struct{}{}
	}
	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("year IN ?", yearList).Delete(&models.NonWorkingDay{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(&days, 100).Error
	})
}

func (r *GormNonWorkingDayRepository) GetBetween(ctx context.Context, startDate, endDate string) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) GetByYearMonth(ctx context.Context, year, month int) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).Where("year = ? AND month = ?", year, month).Order("day ASC").Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NonWorkingDay{}).
		Where("date = ?", date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}
