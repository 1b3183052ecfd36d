package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance-bot/internal/category"
	"attendance-bot/internal/clock"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/mirror"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

const maxTaskHours = 24

type TaskInput struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type TaskService struct {
	taskRepo   repository.TaskRepository
	classifier *category.Classifier
	clock      clock.Clock
	notifier   mirror.Notifier
	logger     *logrus.Logger
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	classifier *category.Classifier,
	clk clock.Clock,
	notifier mirror.Notifier,
) *TaskService {
	if classifier == nil {
		classifier = category.NewDefault()
	}
	if notifier == nil {
		notifier = mirror.Nop{}
	}

	return &TaskService{
		taskRepo:   taskRepo,
		classifier: classifier,
		clock:      clk,
		notifier:   notifier,
		logger:     logging.New(),
	}
}

// LogTasks classifies and stores today's tasks. Mirror delivery is
// asynchronous and never fails the call.
func (s *TaskService) LogTasks(ctx context.Context, userID string, inputs []TaskInput) ([]*models.TaskEntry, error) {
	if len(inputs) == 0 {
		return nil, &ValidationError{Reason: "작업 내역이 비어 있습니다"}
	}

	now := s.clock.Now()
	date := clock.DateString(now)

	entries := make([]*models.TaskEntry, 0, len(inputs))
	items := make([]mirror.TaskItem, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("%d번째 작업 이름이 비어 있습니다", i+1)}
		}
		if in.Hours < 0 || in.Hours > maxTaskHours {
			return nil, &ValidationError{Reason: fmt.Sprintf("작업 시간은 0~%d시간 사이여야 합니다: %s", maxTaskHours, name)}
		}

		cat := s.classifier.Classify(name)
		entries = append(entries, &models.TaskEntry{
			UserID:   userID,
			Date:     date,
			Name:     name,
			Hours:    in.Hours,
			Category: cat,
		})
		items = append(items, mirror.TaskItem{Name: name, Hours: in.Hours, Category: cat})
	}

	if err := s.taskRepo.CreateTasks(ctx, entries); err != nil {
		s.logger.WithError(err).Error("Failed to store tasks")
		return nil, fmt.Errorf("store tasks: %w", err)
	}

	event := mirror.NewTasksEvent(userID, date, items, now)
	event.MonthToDate = s.monthToDateHours(ctx, userID, now)
	_ = s.notifier.OnTasksLogged(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    date,
		"count":   len(entries),
	}).Info("Tasks logged")

	return entries, nil
}

// GetMonthlyTaskStats sums task hours per category for a YYYY-MM month.
func (s *TaskService) GetMonthlyTaskStats(ctx context.Context, userID, yearMonth string) ([]models.CategoryStat, error) {
	first, err := time.ParseInLocation(clock.MonthLayout, yearMonth, s.clock.Location())
	if err != nil {
		return nil, &ValidationError{Reason: "월 형식이 올바르지 않습니다 (YYYY-MM)"}
	}
	last := first.AddDate(0, 1, -1)

	stats, err := s.taskRepo.GetCategoryStats(ctx, userID, clock.DateString(first), clock.DateString(last))
	if err != nil {
		s.logger.WithError(err).Error("Failed to get category stats")
		return nil, fmt.Errorf("get category stats: %w", err)
	}
	if stats == nil {
		stats = []models.CategoryStat{}
	}
	return stats, nil
}

func (s *TaskService) GetTodayTasks(ctx context.Context, userID string) ([]*models.TaskEntry, error) {
	tasks, err := s.taskRepo.GetTasksForDate(ctx, userID, clock.Today(s.clock))
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) monthToDateHours(ctx context.Context, userID string, now time.Time) float64 {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats, err := s.taskRepo.GetCategoryStats(ctx, userID, clock.DateString(first), clock.DateString(now))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to compute month-to-date task hours")
		return 0
	}

	var total float64
	for _, st := range stats {
		total += st.TotalHours
	}
	return total
}
