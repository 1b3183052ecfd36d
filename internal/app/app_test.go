package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"attendance-bot/internal/config"
	"attendance-bot/internal/repository"
)

func TestOptionsFromConfig(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(rules, []byte("rules:\n  - category: Support\n    keywords: [장애]\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	opts, err := OptionsFromConfig(&config.BotConfig{
		Timezone:          "Asia/Seoul",
		CategoryRulesFile: rules,
		LateCutoff:        "10:00",
		ActiveUserDays:    7,
	})
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if got := opts.Clock.Location().String(); got != "Asia/Seoul" {
		t.Fatalf("location = %s, want Asia/Seoul", got)
	}
	if got := opts.Classifier.Classify("결제 장애 대응"); got != "Support" {
		t.Fatalf("Classify = %q, want Support", got)
	}
	if opts.Policy.LateCutoff != "10:00" || opts.ActiveUserDays != 7 {
		t.Fatalf("opts = %+v", opts)
	}

	if _, err := OptionsFromConfig(&config.BotConfig{Timezone: "Mars/Olympus"}); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestNewServicesMigrates(t *testing.T) {
	db, err := repository.OpenDatabase(repository.DriverSQLite, "file:app_services?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	opts, err := OptionsFromConfig(&config.BotConfig{Timezone: "UTC"})
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	services, err := NewServices(db, opts)
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}

	for _, table := range []string{"attendance_sessions", "task_entries", "users", "non_working_days"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("table %s was not migrated", table)
		}
	}

	status, err := services.Attendance.GetTodayStatus(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetTodayStatus: %v", err)
	}
	if status.CheckedIn() {
		t.Fatalf("status = %+v, want no sessions", status)
	}
}

func TestNewNotifierWithoutTargets(t *testing.T) {
	d, err := NewNotifier(context.Background(), &config.BotConfig{})
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}
	d.Wait()
}
