package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.Timezone != "Asia/Seoul" || cfg.ActiveUserDays != 30 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.LateCutoff != "09:00" || cfg.EarlyLeaveCutoff != "18:00" || !cfg.RemindersEnabled {
		t.Fatalf("cutoff defaults = %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/attendance")
	t.Setenv("ACTIVE_USER_DAYS", "7")
	t.Setenv("REMINDERS_ENABLED", "false")
	t.Setenv("LATE_CUTOFF", "10:00")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramToken != "123:abc" || cfg.DatabaseDriver != "postgres" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ActiveUserDays != 7 || cfg.RemindersEnabled || cfg.LateCutoff != "10:00" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.Validate(true); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := BotConfig{
		DatabaseDriver:     "mysql",
		Timezone:           "Mars/Olympus",
		LateCutoff:         "9",
		EarlyLeaveCutoff:   "18:00",
		CheckInReminderAt:  "09:00",
		CheckOutReminderAt: "18:00",
		NotionAPIKey:       "secret",
	}
	err := cfg.Validate(true)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "mysql", "TIMEZONE", "LATE_CUTOFF", "Notion"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}

	cfg = BotConfig{
		DatabaseDriver:     "sqlite",
		DatabaseURL:        "attendance.db",
		Timezone:           "UTC",
		LateCutoff:         "09:00",
		EarlyLeaveCutoff:   "18:00",
		CheckInReminderAt:  "09:00",
		CheckOutReminderAt: "18:00",
	}
	if err := cfg.Validate(false); err != nil {
		t.Fatalf("cli config without token: %v", err)
	}
	if cfg.NotionEnabled() || cfg.QueueEnabled() {
		t.Fatalf("mirrors enabled without settings")
	}
}
