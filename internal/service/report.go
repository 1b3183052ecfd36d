package service

import (
	"context"
	"fmt"
	"time"

	"attendance-bot/internal/clock"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Default attendance cutoffs, compared at minute precision.
const (
	DefaultLateCutoff       = "09:00"
	DefaultEarlyLeaveCutoff = "18:00"
)

// ReportPolicy holds the HH:MM cutoffs used for late and early-leave counts.
type ReportPolicy struct {
	LateCutoff       string
	EarlyLeaveCutoff string
}

func DefaultReportPolicy() ReportPolicy {
	return ReportPolicy{
		LateCutoff:       DefaultLateCutoff,
		EarlyLeaveCutoff: DefaultEarlyLeaveCutoff,
	}
}

// Normalize fills empty cutoffs with defaults and rejects malformed ones.
func (p ReportPolicy) Normalize() (ReportPolicy, error) {
	if p.LateCutoff == "" {
		p.LateCutoff = DefaultLateCutoff
	}
	if p.EarlyLeaveCutoff == "" {
		p.EarlyLeaveCutoff = DefaultEarlyLeaveCutoff
	}
	for _, v := range []string{p.LateCutoff, p.EarlyLeaveCutoff} {
		if _, err := time.Parse("15:04", v); err != nil {
			return p, fmt.Errorf("invalid cutoff %q: want HH:MM", v)
		}
	}
	return p, nil
}

type ReportService struct {
	sessionRepo repository.AttendanceSessionRepository
	holidayRepo repository.NonWorkingDayRepository
	clock       clock.Clock
	policy      ReportPolicy
	logger      *logrus.Logger
}

// NewReportService builds the aggregator. holidayRepo may be nil, in which case
// every Monday to Friday is an expected working day.
func NewReportService(
	sessionRepo repository.AttendanceSessionRepository,
	holidayRepo repository.NonWorkingDayRepository,
	clk clock.Clock,
	policy ReportPolicy,
) *ReportService {
	logger := logging.New()

	normalized, err := policy.Normalize()
	if err != nil {
		logger.WithError(err).Warn("Invalid report policy, using defaults")
		normalized = DefaultReportPolicy()
	}

	return &ReportService{
		sessionRepo: sessionRepo,
		holidayRepo: holidayRepo,
		clock:       clk,
		policy:      normalized,
		logger:      logger,
	}
}

// GetMonthlyReport aggregates one calendar month given as YYYY-MM.
func (s *ReportService) GetMonthlyReport(ctx context.Context, userID, yearMonth string) (*models.MonthlyReport, error) {
	first, err := time.ParseInLocation(clock.MonthLayout, yearMonth, s.clock.Location())
	if err != nil {
		return nil, &ValidationError{Reason: "월 형식이 올바르지 않습니다 (YYYY-MM)"}
	}
	last := first.AddDate(0, 1, -1)

	report, err := s.GetRangeReport(ctx, userID, clock.DateString(first), clock.DateString(last))
	if err != nil {
		return nil, err
	}
	report.Label = yearMonth
	return report, nil
}

// GetWeeklyReport aggregates Monday through Sunday of the current week.
func (s *ReportService) GetWeeklyReport(ctx context.Context, userID string) (*models.Report, error) {
	now := s.clock.Now()
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	sunday := monday.AddDate(0, 0, 6)

	report, err := s.GetRangeReport(ctx, userID, clock.DateString(monday), clock.DateString(sunday))
	if err != nil {
		return nil, err
	}
	report.Label = fmt.Sprintf("%s ~ %s", report.StartDate, report.EndDate)
	return report, nil
}

// GetRangeReport aggregates the inclusive range [startDate, endDate].
func (s *ReportService) GetRangeReport(ctx context.Context, userID, startDate, endDate string) (*models.Report, error) {
	ctx, span := startSpan(ctx, "ReportService.GetRangeReport", userID)
	defer span.End()
	span.SetAttributes(attribute.String("report.start", startDate), attribute.String("report.end", endDate))

	loc := s.clock.Location()
	start, err := clock.ParseDate(startDate, loc)
	if err != nil {
		return nil, &ValidationError{Reason: "시작 날짜 형식이 올바르지 않습니다 (YYYY-MM-DD)"}
	}
	end, err := clock.ParseDate(endDate, loc)
	if err != nil {
		return nil, &ValidationError{Reason: "종료 날짜 형식이 올바르지 않습니다 (YYYY-MM-DD)"}
	}
	if end.Before(start) {
		return nil, &ValidationError{Reason: "종료 날짜가 시작 날짜보다 빠릅니다"}
	}

	rollups, err := s.sessionRepo.GetDailyRollups(ctx, userID, startDate, endDate)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load daily rollups")
		span.RecordError(err)
		return nil, fmt.Errorf("get daily rollups: %w", err)
	}

	holidays := map[string]bool{}
	if s.holidayRepo != nil {
		days, err := s.holidayRepo.GetBetween(ctx, startDate, endDate)
		if err != nil {
			s.logger.WithError(err).Error("Failed to load non-working days")
			return nil, fmt.Errorf("get non-working days: %w", err)
		}
		for _, d := range days {
			holidays[d.Date] = true
		}
	}

	today, _ := clock.ParseDate(clock.Today(s.clock), loc)
	report := Aggregate(rollups, start, end, today, s.policy, holidays)

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"start":      startDate,
		"end":        endDate,
		"work_days":  report.TotalWorkDays,
		"absent":     report.AbsentCount,
		"total_mins": report.TotalMinutes,
	}).Debug("Report aggregated")

	return &report, nil
}

// Aggregate folds per-day rollups over [start, end] into a Report.
//
// Only days with at least one closed session count as worked and appear in
// Records. Late and early-leave tallies need both ends of a closed interval.
// Expected working days are weekdays not listed in holidays; those without a
// closed session and not after today are absences, even if a session is
// still open.
func Aggregate(rollups []models.DailyRollup, start, end, today time.Time, policy ReportPolicy, holidays map[string]bool) models.Report {
	report := models.Report{
		StartDate:  clock.DateString(start),
		EndDate:    clock.DateString(end),
		AbsentDays: []string{},
		Records:    []models.DailyRollup{},
	}

	present := make(map[string]bool, len(rollups))
	for _, r := range rollups {
		if r.ClosedSessions == 0 {
			continue
		}
		present[r.Date] = true
		report.Records = append(report.Records, r)

		report.TotalWorkDays++
		report.TotalMinutes += r.TotalMinutes

		if !r.HasBothEnds() {
			continue
		}
		if shortTime(*r.FirstCheckIn) > policy.LateCutoff {
			report.LateCount++
		}
		if shortTime(*r.LastCheckOut) < policy.EarlyLeaveCutoff {
			report.EarlyLeaveCount++
		}
	}

	todayDate := clock.DateString(today)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if clock.IsWeekend(d) {
			continue
		}
		date := clock.DateString(d)
		if holidays[date] || present[date] || date > todayDate {
			continue
		}
		report.AbsentDays = append(report.AbsentDays, date)
	}
	report.AbsentCount = len(report.AbsentDays)

	if report.TotalWorkDays > 0 {
		report.AverageMinutes = report.TotalMinutes / report.TotalWorkDays
	}

	return report
}
