package service

import (
	"context"
	"errors"
	"fmt"

	"attendance-bot/internal/clock"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/mirror"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("attendance-bot/service")

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
)

type CheckInResult struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	SessionNumber int    `json:"session_number"`
}

type CheckOutResult struct {
	Date                  string `json:"date"`
	Time                  string `json:"time"`
	SessionNumber         int    `json:"session_number"`
	WorkMinutes           int    `json:"work_minutes"`
	TotalWorkMinutesToday int    `json:"total_work_minutes_today"`
}

// ManualEntryInput holds a retroactive record. Times accept HH:MM or HH:MM:SS.
type ManualEntryInput struct {
	Date     string  `json:"date"`
	CheckIn  string  `json:"check_in"`
	CheckOut *string `json:"check_out,omitempty"`
}

type ManualEntryResult struct {
	Date        string  `json:"date"`
	CheckIn     string  `json:"check_in"`
	CheckOut    *string `json:"check_out,omitempty"`
	WorkMinutes int     `json:"work_minutes"`
	Status      string  `json:"status"`
}

// AttendanceService drives the session state machine. It keeps no state
// between calls; the store's unique indexes guard concurrent check-ins.
type AttendanceService struct {
	sessionRepo repository.AttendanceSessionRepository
	clock       clock.Clock
	notifier    mirror.Notifier
	logger      *logrus.Logger
}

func NewAttendanceService(
	sessionRepo repository.AttendanceSessionRepository,
	clk clock.Clock,
	notifier mirror.Notifier,
) *AttendanceService {
	if notifier == nil {
		notifier = mirror.Nop{}
	}

	return &AttendanceService{
		sessionRepo: sessionRepo,
		clock:       clk,
		notifier:    notifier,
		logger:      logging.New(),
	}
}

// CheckIn opens a new session for today
func (s *AttendanceService) CheckIn(ctx context.Context, userID string) (*CheckInResult, error) {
	ctx, span := startSpan(ctx, "AttendanceService.CheckIn", userID)
	defer span.End()

	now := s.clock.Now()
	date := clock.DateString(now)
	checkIn := clock.TimeString(now)

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"date":     date,
		"check_in": checkIn,
	}).Info("User checking in")

	open, err := s.sessionRepo.GetOpenSession(ctx, userID, date)
	if err != nil {
		return nil, s.storeError(span, "check open session", err)
	}
	if open != nil {
		s.logger.WithField("user_id", userID).Warn("User already has open session")
		return nil, &ConflictError{Reason: fmt.Sprintf("이미 출근 중입니다 (%s부터, %d번째 세션)", shortTime(open.CheckIn), open.SessionNumber)}
	}

	// Manual and live tracking never mix on one date.
	record, err := s.sessionRepo.GetRecord(ctx, userID, date)
	if err != nil {
		return nil, s.storeError(span, "check manual record", err)
	}
	if record != nil && record.IsManual {
		s.logger.WithField("user_id", userID).Warn("Date already holds a manual record")
		return nil, &ConflictError{Reason: "오늘은 이미 수동으로 입력된 기록이 있습니다"}
	}

	session, err := s.sessionRepo.CreateSession(ctx, userID, date, checkIn)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "이미 출근 처리되었습니다"}
		}
		return nil, s.storeError(span, "create session", err)
	}

	event := mirror.NewAttendanceEvent(mirror.EventCheckIn, userID, date, now)
	event.SessionNumber = session.SessionNumber
	event.CheckIn = checkIn
	_ = s.notifier.OnCheckIn(ctx, event)

	span.SetAttributes(attribute.Int("session.number", session.SessionNumber))
	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"date":           date,
		"session_number": session.SessionNumber,
	}).Info("User checked in successfully")

	return &CheckInResult{
		Date:          date,
		Time:          checkIn,
		SessionNumber: session.SessionNumber,
	}, nil
}

// CheckOut closes today's open session and recomputes the day total
func (s *AttendanceService) CheckOut(ctx context.Context, userID string) (*CheckOutResult, error) {
	ctx, span := startSpan(ctx, "AttendanceService.CheckOut", userID)
	defer span.End()

	now := s.clock.Now()
	date := clock.DateString(now)
	checkOut := clock.TimeString(now)

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"date":      date,
		"check_out": checkOut,
	}).Info("User checking out")

	open, err := s.sessionRepo.GetOpenSession(ctx, userID, date)
	if err != nil {
		return nil, s.storeError(span, "get open session", err)
	}
	if open == nil {
		s.logger.WithField("user_id", userID).Warn("No open session to close")
		return nil, &NotFoundError{Reason: "출근 기록이 없습니다. 먼저 출근해 주세요"}
	}

	in, err := open.CheckInAt(s.clock.Location())
	if err != nil {
		return nil, s.storeError(span, "parse check-in", err)
	}
	minutes := models.WorkedMinutes(in, now)

	if err := s.sessionRepo.CloseSession(ctx, open.ID, checkOut, minutes); err != nil {
		if errors.Is(err, repository.ErrSessionNotOpen) {
			return nil, &NotFoundError{Reason: "이미 퇴근 처리되었습니다"}
		}
		return nil, s.storeError(span, "close session", err)
	}

	total, err := s.sessionRepo.SumClosedMinutes(ctx, userID, date)
	if err != nil {
		return nil, s.storeError(span, "sum closed minutes", err)
	}

	event := mirror.NewAttendanceEvent(mirror.EventCheckOut, userID, date, now)
	event.SessionNumber = open.SessionNumber
	event.CheckIn = open.CheckIn
	event.CheckOut = &checkOut
	event.WorkMinutes = minutes
	event.TotalWorkMinutes = total
	event.IsManual = open.IsManual
	_ = s.notifier.OnCheckOut(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"date":           date,
		"session_number": open.SessionNumber,
		"work_minutes":   minutes,
		"total_minutes":  total,
	}).Info("User checked out successfully")

	return &CheckOutResult{
		Date:                  date,
		Time:                  checkOut,
		SessionNumber:         open.SessionNumber,
		WorkMinutes:           minutes,
		TotalWorkMinutesToday: total,
	}, nil
}

// ManualEntry records a past day that was not tracked live
func (s *AttendanceService) ManualEntry(ctx context.Context, userID string, in ManualEntryInput) (*ManualEntryResult, error) {
	ctx, span := startSpan(ctx, "AttendanceService.ManualEntry", userID)
	defer span.End()

	loc := s.clock.Location()
	day, err := clock.ParseDate(in.Date, loc)
	if err != nil {
		return nil, &ValidationError{Reason: "날짜 형식이 올바르지 않습니다 (YYYY-MM-DD)"}
	}
	date := clock.DateString(day)
	if date > clock.Today(s.clock) {
		return nil, &ValidationError{Reason: "미래 날짜는 입력할 수 없습니다"}
	}

	checkIn, err := clock.ParseTimeOfDay(in.CheckIn)
	if err != nil {
		return nil, &ValidationError{Reason: "출근 시간 형식이 올바르지 않습니다 (HH:MM)"}
	}

	var checkOut *string
	minutes := 0
	if in.CheckOut != nil && *in.CheckOut != "" {
		out, err := clock.ParseTimeOfDay(*in.CheckOut)
		if err != nil {
			return nil, &ValidationError{Reason: "퇴근 시간 형식이 올바르지 않습니다 (HH:MM)"}
		}
		if out < checkIn {
			return nil, &ValidationError{Reason: "퇴근 시간이 출근 시간보다 빠를 수 없습니다"}
		}
		start, _ := clock.At(date, checkIn, loc)
		end, _ := clock.At(date, out, loc)
		minutes = models.WorkedMinutes(start, end)
		checkOut = &out
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"date":      date,
		"check_in":  checkIn,
		"check_out": checkOut,
	}).Info("Recording manual entry")

	existing, err := s.sessionRepo.GetRecord(ctx, userID, date)
	if err != nil {
		return nil, s.storeError(span, "check existing record", err)
	}
	if existing != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    date,
		}).Warn("Date already has a record")
		return nil, &ValidationError{Reason: fmt.Sprintf("%s에 이미 기록이 있습니다", date)}
	}

	session, err := s.sessionRepo.CreateManualRecord(ctx, userID, date, checkIn, checkOut, minutes)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ValidationError{Reason: fmt.Sprintf("%s에 이미 기록이 있습니다", date)}
		}
		return nil, s.storeError(span, "create manual record", err)
	}

	event := mirror.NewAttendanceEvent(mirror.EventManualEntry, userID, date, s.clock.Now())
	event.SessionNumber = session.SessionNumber
	event.CheckIn = checkIn
	event.CheckOut = checkOut
	event.WorkMinutes = minutes
	event.TotalWorkMinutes = minutes
	event.IsManual = true
	_ = s.notifier.OnManualEntry(ctx, event)

	return &ManualEntryResult{
		Date:        date,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		WorkMinutes: minutes,
		Status:      session.Status,
	}, nil
}

// GetTodayStatus projects today's sessions. Missing data yields zero values.
func (s *AttendanceService) GetTodayStatus(ctx context.Context, userID string) (*models.DailyStatus, error) {
	ctx, span := startSpan(ctx, "AttendanceService.GetTodayStatus", userID)
	defer span.End()

	now := s.clock.Now()
	date := clock.DateString(now)

	sessions, err := s.sessionRepo.GetSessionsForDate(ctx, userID, date)
	if err != nil {
		return nil, s.storeError(span, "get sessions", err)
	}

	status := &models.DailyStatus{
		Date:      date,
		Sessions:  sessions,
		IsWeekend: clock.IsWeekend(now),
	}
	if status.Sessions == nil {
		status.Sessions = []*models.AttendanceSession{}
	}

	for _, session := range sessions {
		status.TotalSessions++
		if session.IsManual {
			status.IsManual = true
		}
		if status.FirstCheckIn == nil || session.CheckIn < *status.FirstCheckIn {
			checkIn := session.CheckIn
			status.FirstCheckIn = &checkIn
		}
		if session.IsOpen() {
			status.OpenSession = session
			continue
		}
		status.CompletedSessions++
		status.TotalMinutes += session.WorkMinutes
		if session.CheckOut != nil && (status.LastCheckOut == nil || *session.CheckOut > *status.LastCheckOut) {
			checkOut := *session.CheckOut
			status.LastCheckOut = &checkOut
		}
	}

	return status, nil
}

// GetRecentSessions lists the latest sessions, newest first.
func (s *AttendanceService) GetRecentSessions(ctx context.Context, userID string, limit int) ([]*models.AttendanceSession, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	sessions, err := s.sessionRepo.GetRecentSessions(ctx, userID, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get recent sessions")
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	return sessions, nil
}

func (s *AttendanceService) storeError(span trace.Span, op string, err error) error {
	s.logger.WithError(err).Errorf("Failed to %s", op)
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	return fmt.Errorf("%s: %w", op, err)
}

func startSpan(ctx context.Context, name, userID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("app.userId", userID)))
}

// shortTime trims seconds from a HH:MM:SS value.
func shortTime(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}
