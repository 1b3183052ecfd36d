package models

// DailyRollup is the per-date aggregate of one user's sessions.
// FirstCheckIn, LastCheckOut and TotalMinutes consider closed sessions only.
type DailyRollup struct {
	Date           string  `json:"date"`
	FirstCheckIn   *string `json:"first_check_in"`
	LastCheckOut   *string `json:"last_check_out"`
	TotalMinutes   int     `json:"total_minutes"`
	ClosedSessions int     `json:"closed_sessions"`
	Sessions       int     `json:"sessions"`
}

// HasBothEnds reports whether the day has a closed interval to judge late/early by.
func (r DailyRollup) HasBothEnds() bool {
	return r.ClosedSessions > 0 && r.FirstCheckIn != nil && r.LastCheckOut != nil
}

// DailyStatus is the read projection of a user's sessions for one date.
type DailyStatus struct {
	Date              string               `json:"date"`
	FirstCheckIn      *string              `json:"first_check_in"`
	LastCheckOut      *string              `json:"last_check_out"`
	TotalMinutes      int                  `json:"total_minutes"`
	TotalSessions     int                  `json:"total_sessions"`
	CompletedSessions int                  `json:"completed_sessions"`
	OpenSession       *AttendanceSession   `json:"open_session"`
	Sessions          []*AttendanceSession `json:"sessions"`
	IsWeekend         bool                 `json:"is_weekend"`
	IsManual          bool                 `json:"is_manual"`
}

// CheckedIn reports whether the user has any session on the date.
func (s *DailyStatus) CheckedIn() bool {
	return s.TotalSessions > 0
}

// Report aggregates attendance over a date range.
type Report struct {
	Label           string        `json:"label"`
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	TotalWorkDays   int           `json:"total_work_days"`
	TotalMinutes    int           `json:"total_minutes"`
	AverageMinutes  int           `json:"average_minutes"`
	LateCount       int           `json:"late_count"`
	EarlyLeaveCount int           `json:"early_leave_count"`
	AbsentCount     int           `json:"absent_count"`
	AbsentDays      []string      `json:"absent_days"`
	Records         []DailyRollup `json:"records"`
}

// MonthlyReport is a Report over one calendar month.
type MonthlyReport = Report
