package repository

import (
	"context"
	"errors"
	"time"

	"attendance-bot/internal/logging"
	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSessionNotOpen is returned when closing a session that is already closed.
var ErrSessionNotOpen = errors.New("session is not open")

// One open session per user and date, enforced by the store itself.
const openSessionIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session
	ON attendance_sessions (user_id, date) WHERE status = 'open'`

type AttendanceSessionRepository interface {
	GetOpenSession(ctx context.Context, userID, date string) (*models.AttendanceSession, error)
	CreateSession(ctx context.Context, userID, date, checkIn string) (*models.AttendanceSession, error)
	CloseSession(ctx context.Context, id uint, checkOut string, minutes int) error
	GetSessionsForDate(ctx context.Context, userID, date string) ([]*models.AttendanceSession, error)
	SumClosedMinutes(ctx context.Context, userID, date string) (int, error)
	GetDailyRollups(ctx context.Context, userID, startDate, endDate string) ([]models.DailyRollup, error)
	GetRecord(ctx context.Context, userID, date string) (*models.AttendanceSession, error)
	CreateManualRecord(ctx context.Context, userID, date, checkIn string, checkOut *string, minutes int) (*models.AttendanceSession, error)
	GetRecentSessions(ctx context.Context, userID string, limit int) ([]*models.AttendanceSession, error)
}

type GormAttendanceSessionRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceSessionRepository(db *gorm.DB) (*GormAttendanceSessionRepository, error) {
	logger := logging.New()

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.AttendanceSession{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance_sessions table")
		return nil, err
	}
	if err := db.Exec(openSessionIndexSQL).Error; err != nil {
		logger.WithError(err).Error("Failed to create open session index")
		return nil, err
	}

	logger.Info("Attendance session repository initialized")

	return &GormAttendanceSessionRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormAttendanceSessionRepository) GetOpenSession(ctx context.Context, userID, date string) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND status = ?", userID, date, models.StatusOpen).
		Order("session_number DESC").
		First(&session)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    date,
		}).Debug("No open session found")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get open session")
		return nil, result.Error
	}

	return &session, nil
}

// CreateSession inserts an open session numbered max(existing)+1 for the date.
// A concurrent insert for the same user and date fails with gorm.ErrDuplicatedKey.
func (r *GormAttendanceSessionRepository) CreateSession(ctx context.Context, userID, date, checkIn string) (*models.AttendanceSession, error) {
	r.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"date":     date,
		"check_in": checkIn,
	}).Info("Creating attendance session")

	var session *models.AttendanceSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		row := tx.Model(&models.AttendanceSession{}).
			Select("COALESCE(MAX(session_number), 0) + 1").
			Where("user_id = ? AND date = ?", userID, date).
			Row()
		if err := row.Scan(&next); err != nil {
			return err
		}

		s := &models.AttendanceSession{
			UserID:        userID,
			Date:          date,
			SessionNumber: next,
			CheckIn:       checkIn,
			Status:        models.StatusOpen,
		}
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"date":    date,
			}).Warn("Concurrent session insert rejected by store")
		} else {
			r.logger.WithError(err).Error("Failed to create attendance session")
		}
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"id":             session.ID,
		"user_id":        userID,
		"session_number": session.SessionNumber,
	}).Info("Attendance session created successfully")

	return session, nil
}

// CloseSession moves an open session to closed. The status check is part of
// the UPDATE so a session is closed at most once.
func (r *GormAttendanceSessionRepository) CloseSession(ctx context.Context, id uint, checkOut string, minutes int) error {
	r.logger.WithFields(logrus.Fields{
		"id":           id,
		"check_out":    checkOut,
		"work_minutes": minutes,
	}).Info("Closing attendance session")

	result := r.db.WithContext(ctx).
		Model(&models.AttendanceSession{}).
		Where("id = ? AND status = ?", id, models.StatusOpen).
		Updates(map[string]interface{}{
			"check_out":    checkOut,
			"work_minutes": minutes,
			"status":       models.StatusClosed,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to close attendance session")
		return result.Error
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", id).Warn("Session was not open")
		return ErrSessionNotOpen
	}

	return nil
}

func (r *GormAttendanceSessionRepository) GetSessionsForDate(ctx context.Context, userID, date string) ([]*models.AttendanceSession, error) {
	var sessions []*models.AttendanceSession
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("session_number ASC").
		Find(&sessions)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get sessions for date")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    date,
		"count":   len(sessions),
	}).Debug("Retrieved sessions for date")

	return sessions, nil
}

func (r *GormAttendanceSessionRepository) SumClosedMinutes(ctx context.Context, userID, date string) (int, error) {
	var total int64
	row := r.db.WithContext(ctx).
		Model(&models.AttendanceSession{}).
		Select("COALESCE(SUM(work_minutes), 0)").
		Where("user_id = ? AND date = ? AND status = ?", userID, date, models.StatusClosed).
		Row()
	if err := row.Scan(&total); err != nil {
		r.logger.WithError(err).Error("Failed to sum closed minutes")
		return 0, err
	}

	return int(total), nil
}

const dailyRollupSQL = `SELECT
	date,
	MIN(CASE WHEN status = 'closed' THEN check_in END) AS first_check_in,
	MAX(CASE WHEN status = 'closed' THEN check_out END) AS last_check_out,
	COALESCE(SUM(CASE WHEN status = 'closed' THEN work_minutes ELSE 0 END), 0) AS total_minutes,
	COALESCE(SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END), 0) AS closed_sessions,
	COUNT(*) AS sessions
FROM attendance_sessions
WHERE user_id = ? AND date BETWEEN ? AND ?
GROUP BY date
ORDER BY date ASC`

// GetDailyRollups returns one row per date in [startDate, endDate] that has any session.
func (r *GormAttendanceSessionRepository) GetDailyRollups(ctx context.Context, userID, startDate, endDate string) ([]models.DailyRollup, error) {
	var rollups []models.DailyRollup
	result := r.db.WithContext(ctx).Raw(dailyRollupSQL, userID, startDate, endDate).Scan(&rollups)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get daily rollups")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"start":   startDate,
		"end":     endDate,
		"days":    len(rollups),
	}).Debug("Retrieved daily rollups")

	return rollups, nil
}

// GetRecord returns the first session recorded for the date, manual or live.
func (r *GormAttendanceSessionRepository) GetRecord(ctx context.Context, userID, date string) (*models.AttendanceSession, error) {
	var session models.AttendanceSession
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("session_number ASC").
		First(&session)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance record")
		return nil, result.Error
	}

	return &session, nil
}

func (r *GormAttendanceSessionRepository) CreateManualRecord(ctx context.Context, userID, date, checkIn string, checkOut *string, minutes int) (*models.AttendanceSession, error) {
	session := &models.AttendanceSession{
		UserID:        userID,
		Date:          date,
		SessionNumber: 1,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		WorkMinutes:   minutes,
		Status:        models.StatusOpen,
		IsManual:      true,
	}
	if checkOut != nil {
		session.Status = models.StatusClosed
	}

	if !session.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    date,
		}).Warn("Invalid manual record data")
		return nil, errors.New("invalid manual record")
	}

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			r.logger.WithError(err).Error("Failed to create manual record")
		}
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      session.ID,
		"user_id": userID,
		"date":    date,
		"status":  session.Status,
	}).Info("Manual record created successfully")

	return session, nil
}

func (r *GormAttendanceSessionRepository) GetRecentSessions(ctx context.Context, userID string, limit int) ([]*models.AttendanceSession, error) {
	var sessions []*models.AttendanceSession

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("session_number DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&sessions).Error; err != nil {
		r.logger.WithError(err).Error("Failed to get recent sessions")
		return nil, err
	}

	return sessions, nil
}
