package models

import (
	"math"
	"time"
)

type AttendanceSession struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UserID        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_session_number,priority:1" json:"user_id"`
	Date          string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_session_number,priority:2;index" json:"date"`
	SessionNumber int       `gorm:"not null;uniqueIndex:idx_session_number,priority:3" json:"session_number"`
	CheckIn       string    `gorm:"type:varchar(8);not null" json:"check_in"`
	CheckOut      *string   `gorm:"type:varchar(8)" json:"check_out"`
	WorkMinutes   int       `gorm:"not null;default:0" json:"work_minutes"`
	Status        string    `gorm:"type:varchar(10);not null;default:'open';index" json:"status"`
	IsManual      bool      `gorm:"not null;default:false" json:"is_manual"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

// Session statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

func (s *AttendanceSession) IsOpen() bool {
	return s.Status == StatusOpen
}

func (s *AttendanceSession) IsClosed() bool {
	return s.Status == StatusClosed
}

// CheckInAt returns the check-in instant in loc.
func (s *AttendanceSession) CheckInAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04:05", s.Date+" "+s.CheckIn, loc)
}

// WorkedMinutes rounds the interval between in and out to whole minutes.
// Negative intervals count as zero.
func WorkedMinutes(in, out time.Time) int {
	minutes := int(math.Round(out.Sub(in).Minutes()))
	if minutes < 0 {
		return 0
	}
	return minutes
}

// IsValid reports whether the row satisfies the session invariants.
func (s *AttendanceSession) IsValid() bool {
	if s.UserID == "" || s.Date == "" || s.CheckIn == "" {
		return false
	}
	if s.SessionNumber < 1 {
		return false
	}
	if s.Status != StatusOpen && s.Status != StatusClosed {
		return false
	}
	if s.Status == StatusClosed && s.CheckOut == nil {
		return false
	}
	return s.WorkMinutes >= 0
}
