// Package reminder nudges users who forgot to check in or out.
package reminder

import (
	"context"
	"fmt"
	"time"

	"attendance-bot/internal/clock"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	CheckIn  Kind = "check_in"
	CheckOut Kind = "check_out"
)

// Sender delivers reminder messages to one user.
type Sender interface {
	SendCheckInReminder(ctx context.Context, user *models.User) error
	SendCheckOutReminder(ctx context.Context, user *models.User, status *models.DailyStatus) error
}

type UserLister interface {
	ListActiveUsers(ctx context.Context) ([]*models.User, error)
}

type StatusReader interface {
	GetTodayStatus(ctx context.Context, userID string) (*models.DailyStatus, error)
}

type Calendar interface {
	IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error)
}

// Config holds the HH:MM times of the weekday sweeps.
type Config struct {
	CheckInAt  string
	CheckOutAt string
}

type Scheduler struct {
	clock    clock.Clock
	users    UserLister
	status   StatusReader
	calendar Calendar
	sender   Sender

	specs     map[Kind]string
	schedules map[Kind]cron.Schedule
	logger    *logrus.Logger
}

// WeekdaySpec turns HH:MM into a cron spec firing Monday to Friday.
func WeekdaySpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("invalid reminder time %q: want HH:MM", at)
	}
	return fmt.Sprintf("%d %d * * 1-5", t.Minute(), t.Hour()), nil
}

// New builds a scheduler. calendar may be nil.
func New(cfg Config, clk clock.Clock, users UserLister, status StatusReader, calendar Calendar, sender Sender) (*Scheduler, error) {
	s := &Scheduler{
		clock:     clk,
		users:     users,
		status:    status,
		calendar:  calendar,
		sender:    sender,
		specs:     make(map[Kind]string),
		schedules: make(map[Kind]cron.Schedule),
		logger:    logging.New(),
	}

	for kind, at := range map[Kind]string{CheckIn: cfg.CheckInAt, CheckOut: cfg.CheckOutAt} {
		spec, err := WeekdaySpec(at)
		if err != nil {
			return nil, err
		}
		schedule, err := cron.ParseStandard(spec)
		if err != nil {
			return nil, fmt.Errorf("parse %s schedule: %w", kind, err)
		}
		s.specs[kind] = spec
		s.schedules[kind] = schedule
	}
	return s, nil
}

// Next reports when the sweep of kind runs after t, in the clock's zone.
func (s *Scheduler) Next(kind Kind, after time.Time) time.Time {
	return s.schedules[kind].Next(after.In(s.clock.Location()))
}

// Run drives both sweeps on a cron until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	cronLogger := cron.PrintfLogger(s.logger)
	c := cron.New(
		cron.WithLocation(s.clock.Location()),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	for _, kind := range []Kind{CheckIn, CheckOut} {
		kind := kind
		c.Schedule(s.schedules[kind], cron.FuncJob(func() {
			s.Fire(ctx, kind)
		}))
	}

	now := s.clock.Now()
	s.logger.WithFields(logrus.Fields{
		"check_in_spec":  s.specs[CheckIn],
		"check_out_spec": s.specs[CheckOut],
		"next_check_in":  s.Next(CheckIn, now).Format(time.RFC3339),
		"next_check_out": s.Next(CheckOut, now).Format(time.RFC3339),
	}).Info("Reminder scheduler started")

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("Reminder scheduler stopped")
}

// Fire runs one sweep unless today is a weekend or a non-working day.
func (s *Scheduler) Fire(ctx context.Context, kind Kind) int {
	now := s.clock.Now()
	if clock.IsWeekend(now) || s.isHoliday(ctx, now) {
		s.logger.WithFields(logrus.Fields{
			"kind": kind,
			"date": clock.DateString(now),
		}).Debug("Skipping reminder on non-working day")
		return 0
	}
	return s.Sweep(ctx, kind)
}

// Sweep messages every active user the reminder applies to and returns how
// many messages were delivered.
func (s *Scheduler) Sweep(ctx context.Context, kind Kind) int {
	users, err := s.users.ListActiveUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list active users")
		return 0
	}

	sent := 0
	for _, user := range users {
		status, err := s.status.GetTodayStatus(ctx, user.UserID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.UserID).Error("Failed to read today status")
			continue
		}

		switch {
		case kind == CheckIn && !status.CheckedIn():
			err = s.sender.SendCheckInReminder(ctx, user)
		case kind == CheckOut && status.OpenSession != nil:
			err = s.sender.SendCheckOutReminder(ctx, user, status)
		default:
			continue
		}

		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": user.UserID,
				"kind":    kind,
			}).Warn("Failed to deliver reminder")
			continue
		}
		sent++
	}

	s.logger.WithFields(logrus.Fields{
		"kind":  kind,
		"users": len(users),
		"sent":  sent,
	}).Info("Reminder sweep finished")

	return sent
}

func (s *Scheduler) isHoliday(ctx context.Context, now time.Time) bool {
	if s.calendar == nil {
		return false
	}
	holiday, err := s.calendar.IsNonWorkingDay(ctx, now)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check non-working day")
		return false
	}
	return holiday
}
