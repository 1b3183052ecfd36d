package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"attendance-bot/internal/category"
	"attendance-bot/internal/clock"
	"attendance-bot/internal/mirror"
	"attendance-bot/internal/repository"

	"gorm.io/gorm"
)

var kst = time.FixedZone("KST", 9*60*60)

func at(date, hhmm string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, kst)
	if err != nil {
		panic(err)
	}
	return t
}

type recordingNotifier struct {
	mu         sync.Mutex
	attendance []mirror.AttendanceEvent
	tasks      []mirror.TasksEvent
}

func (r *recordingNotifier) add(e mirror.AttendanceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attendance = append(r.attendance, e)
	return nil
}

func (r *recordingNotifier) OnCheckIn(_ context.Context, e mirror.AttendanceEvent) error {
	return r.add(e)
}

func (r *recordingNotifier) OnCheckOut(_ context.Context, e mirror.AttendanceEvent) error {
	return r.add(e)
}

func (r *recordingNotifier) OnManualEntry(_ context.Context, e mirror.AttendanceEvent) error {
	return r.add(e)
}

func (r *recordingNotifier) OnTasksLogged(_ context.Context, e mirror.TasksEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, e)
	return nil
}

type fixture struct {
	clock      *clock.Fixed
	sessions   *repository.GormAttendanceSessionRepository
	holidays   *repository.GormNonWorkingDayRepository
	notifier   *recordingNotifier
	attendance *AttendanceService
	reports    *ReportService
	tasks      *TaskService
	users      *UserService
	calendar   *NonWorkingDayService
}

// newFixture runs on a shared in-memory database. Shared-cache SQLite reports
// table locks instead of waiting on them, so the pool holds one connection.
func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db := openTestDB(t, fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name))
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return newFixtureOn(t, db, now)
}

// newFileFixture runs on a database file with the default connection pool,
// so concurrent callers really hold separate connections.
func newFileFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	return newFixtureOn(t, openTestDB(t, filepath.Join(t.TempDir(), "attendance.db")), now)
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := repository.OpenDatabase(repository.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = repository.CloseDatabase(db) })
	return db
}

func newFixtureOn(t *testing.T, db *gorm.DB, now time.Time) *fixture {
	t.Helper()

	sessions, err := repository.NewGormAttendanceSessionRepository(db)
	if err != nil {
		t.Fatalf("session repo: %v", err)
	}
	holidays, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		t.Fatalf("holiday repo: %v", err)
	}
	taskRepo, err := repository.NewGormTaskRepository(db)
	if err != nil {
		t.Fatalf("task repo: %v", err)
	}
	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		t.Fatalf("user repo: %v", err)
	}

	clk := clock.NewFixed(now)
	notifier := &recordingNotifier{}

	return &fixture{
		clock:      clk,
		sessions:   sessions,
		holidays:   holidays,
		notifier:   notifier,
		attendance: NewAttendanceService(sessions, clk, notifier),
		reports:    NewReportService(sessions, holidays, clk, DefaultReportPolicy()),
		tasks:      NewTaskService(taskRepo, category.NewDefault(), clk, notifier),
		users:      NewUserService(userRepo, clk, 30),
		calendar:   NewNonWorkingDayService(holidays),
	}
}

// workDay records one closed session directly through the store.
func (f *fixture) workDay(t *testing.T, userID, date, in, out string, minutes int) {
	t.Helper()
	ctx := context.Background()
	s, err := f.sessions.CreateSession(ctx, userID, date, in)
	if err != nil {
		t.Fatalf("create session %s: %v", date, err)
	}
	if err := f.sessions.CloseSession(ctx, s.ID, out, minutes); err != nil {
		t.Fatalf("close session %s: %v", date, err)
	}
}
