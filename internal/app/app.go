// Package app wires repositories and services over one database.
package app

import (
	"fmt"

	"attendance-bot/internal/category"
	"attendance-bot/internal/clock"
	"attendance-bot/internal/config"
	"attendance-bot/internal/mirror"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"

	"gorm.io/gorm"
)

type Options struct {
	Clock          clock.Clock
	Notifier       mirror.Notifier
	Classifier     *category.Classifier
	Policy         service.ReportPolicy
	ActiveUserDays int
}

type Services struct {
	Attendance *service.AttendanceService
	Reports    *service.ReportService
	Tasks      *service.TaskService
	Users      *service.UserService
	Calendar   *service.NonWorkingDayService
	Clock      clock.Clock
}

// NewServices migrates every table and builds the services on top of db.
func NewServices(db *gorm.DB, opts Options) (*Services, error) {
	sessionRepo, err := repository.NewGormAttendanceSessionRepository(db)
	if err != nil {
		return nil, fmt.Errorf("attendance session repository: %w", err)
	}

	// Non-working day calendar
	holidayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		return nil, fmt.Errorf("non-working day repository: %w", err)
	}

	taskRepo, err := repository.NewGormTaskRepository(db)
	if err != nil {
		return nil, fmt.Errorf("task repository: %w", err)
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repository: %w", err)
	}

	return &Services{
		Attendance: service.NewAttendanceService(sessionRepo, opts.Clock, opts.Notifier),
		Reports:    service.NewReportService(sessionRepo, holidayRepo, opts.Clock, opts.Policy),
		Tasks:      service.NewTaskService(taskRepo, opts.Classifier, opts.Clock, opts.Notifier),
		Users:      service.NewUserService(userRepo, opts.Clock, opts.ActiveUserDays),
		Calendar:   service.NewNonWorkingDayService(holidayRepo),
		Clock:      opts.Clock,
	}, nil
}

// OptionsFromConfig derives service options from cfg. The notifier is left
// empty for the caller to set.
func OptionsFromConfig(cfg *config.BotConfig) (Options, error) {
	clk, err := clock.NewZoned(cfg.Timezone)
	if err != nil {
		return Options{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	classifier, err := category.FromFile(cfg.CategoryRulesFile)
	if err != nil {
		return Options{}, fmt.Errorf("load category rules: %w", err)
	}

	return Options{
		Clock:      clk,
		Classifier: classifier,
		Policy: service.ReportPolicy{
			LateCutoff:       cfg.LateCutoff,
			EarlyLeaveCutoff: cfg.EarlyLeaveCutoff,
		},
		ActiveUserDays: cfg.ActiveUserDays,
	}, nil
}
