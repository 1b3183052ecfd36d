package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"attendance-bot/internal/app"
	"attendance-bot/internal/clock"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"
)

func testOpener(t *testing.T, now time.Time) (Opener, *app.Services) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.OpenDatabase(repository.DriverSQLite, fmt.Sprintf("file:cli_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	services, err := app.NewServices(db, app.Options{
		Clock:  clock.NewFixed(now),
		Policy: service.DefaultReportPolicy(),
	})
	if err != nil {
		t.Fatalf("services: %v", err)
	}

	return func(context.Context) (*app.Services, func(), error) {
		return services, func() {}, nil
	}, services
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd(open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestManualThenMonthlyReport(t *testing.T) {
	open, _ := testOpener(t, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	out, err := run(t, open, "manual", "--user", "u1", "--date", "2024-03-07", "--in", "09:00", "--out", "17:30")
	if err != nil {
		t.Fatalf("manual: %v", err)
	}
	if !strings.Contains(out, "8시간 30분") {
		t.Fatalf("manual output = %q", out)
	}

	out, err = run(t, open, "report", "monthly", "--user", "u1", "--month", "2024-03")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for _, want := range []string{"근무일: 1일", "조퇴: 1회"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report output = %q, missing %q", out, want)
		}
	}

	out, err = run(t, open, "--json", "report", "monthly", "--user", "u1")
	if err != nil {
		t.Fatalf("json report: %v", err)
	}
	if !strings.Contains(out, `"label": "2024-03"`) {
		t.Fatalf("json report = %q", out)
	}
}

func TestManualRejectsDuplicateDate(t *testing.T) {
	open, _ := testOpener(t, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	args := []string{"manual", "--user", "u1", "--date", "2024-03-07", "--in", "09:00"}
	if _, err := run(t, open, args...); err != nil {
		t.Fatalf("first manual: %v", err)
	}
	if _, err := run(t, open, args...); err == nil {
		t.Fatal("second manual entry for the same date succeeded")
	}
}

func TestReportRequiresUser(t *testing.T) {
	open, _ := testOpener(t, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	if _, err := run(t, open, "report", "weekly"); err == nil {
		t.Fatal("expected missing --user error")
	}
}

func TestUsersList(t *testing.T) {
	open, services := testOpener(t, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	out, err := run(t, open, "users")
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if !strings.Contains(out, "No users found.") {
		t.Fatalf("users output = %q", out)
	}

	if err := services.Users.Touch(context.Background(), "42", "Kim Minji", "Platform"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	out, err = run(t, open, "users", "--active")
	if err != nil {
		t.Fatalf("users --active: %v", err)
	}
	if !strings.Contains(out, "Kim Minji") || !strings.Contains(out, "Platform") {
		t.Fatalf("users output = %q", out)
	}
}

func TestHolidaysImportAndList(t *testing.T) {
	open, _ := testOpener(t, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC))

	path := filepath.Join(t.TempDir(), "2024.json")
	calendar := `{"year": 2024, "months": [{"month": 3, "days": "1,2,3,9,10"}]}`
	if err := os.WriteFile(path, []byte(calendar), 0o644); err != nil {
		t.Fatalf("write calendar: %v", err)
	}

	out, err := run(t, open, "holidays", "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 5 non-working days") {
		t.Fatalf("import output = %q", out)
	}

	out, err = run(t, open, "holidays", "list", "2024", "3")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "2024-03-01") || !strings.Contains(out, "2024-03-10") {
		t.Fatalf("list output = %q", out)
	}

	if _, err := run(t, open, "holidays", "list", "2024", "13"); err == nil {
		t.Fatal("expected invalid month error")
	}
}
