package service

import (
	"context"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/weekends"

	"github.com/sirupsen/logrus"
)

type NonWorkingDayService struct {
	repo repository.NonWorkingDayRepository
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository) *NonWorkingDayService {
	return &NonWorkingDayService{repo: repo}
}

// LoadFromJSON imports non-working days from a calendar JSON file.
func (s *NonWorkingDayService) LoadFromJSON(ctx context.Context, filePath string) (int, error) {
	days, err := weekends.ParseFile(filePath)
	if err != nil {
		return 0, err
	}

	nonWorkingDays := make([]models.NonWorkingDay, 0, len(days))
	for _, d := range days {
		nonWorkingDays = append(nonWorkingDays, models.NonWorkingDay{
			Date:  d.Date,
			Year:  d.Year,
			Month: d.Month,
			Day:   d.Day,
		})
	}

	// Years present in the file are replaced as a whole
	if err := s.repo.BulkReplace(ctx, nonWorkingDays); err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"file": filePath,
		"days": len(nonWorkingDays),
	}).Info("Non-working days imported")

	return len(nonWorkingDays), nil
}

// GetNonWorkingDaysForMonth returns the non-working days of one month.
func (s *NonWorkingDayService) GetNonWorkingDaysForMonth(ctx context.Context, year, month int) ([]models.NonWorkingDay, error) {
	return s.repo.GetByYearMonth(ctx, year, month)
}

// IsNonWorkingDay reports whether date is listed in the calendar.
func (s *NonWorkingDayService) IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	return s.repo.IsNonWorkingDay(ctx, date)
}
