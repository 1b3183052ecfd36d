package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type BotConfig struct {
	TelegramToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	Timezone string `mapstructure:"TIMEZONE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	LateCutoff       string `mapstructure:"LATE_CUTOFF"`
	EarlyLeaveCutoff string `mapstructure:"EARLY_LEAVE_CUTOFF"`

	RemindersEnabled   bool   `mapstructure:"REMINDERS_ENABLED"`
	CheckInReminderAt  string `mapstructure:"CHECKIN_REMINDER_AT"`
	CheckOutReminderAt string `mapstructure:"CHECKOUT_REMINDER_AT"`
	ActiveUserDays     int    `mapstructure:"ACTIVE_USER_DAYS"`

	CategoryRulesFile string `mapstructure:"CATEGORY_RULES_FILE"`
	HolidaysFile      string `mapstructure:"HOLIDAYS_FILE"`

	NotionAPIKey         string `mapstructure:"NOTION_API_KEY"`
	NotionDatabaseID     string `mapstructure:"NOTION_DATABASE_ID"`
	NotionTaskDatabaseID string `mapstructure:"NOTION_TASK_DATABASE_ID"`
	NotionBaseURL        string `mapstructure:"NOTION_BASE_URL"`

	SyncQueueURL string `mapstructure:"SYNC_QUEUE_URL"`
	AWSRegion    string `mapstructure:"AWS_REGION"`
	AWSEndpoint  string `mapstructure:"AWS_ENDPOINT"`
	IsLocalDev   bool   `mapstructure:"IS_LOCAL_DEV"`

	OTelExporterEndpoint string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
	OTelStdout           bool   `mapstructure:"OTEL_STDOUT"`
}

var defaults = map[string]interface{}{
	"TELEGRAM_BOT_TOKEN":      "",
	"DATABASE_DRIVER":         "sqlite",
	"DATABASE_URL":            "attendance.db",
	"TIMEZONE":                "Asia/Seoul",
	"LOG_LEVEL":               "info",
	"HTTP_ADDR":               ":8080",
	"LATE_CUTOFF":             "09:00",
	"EARLY_LEAVE_CUTOFF":      "18:00",
	"REMINDERS_ENABLED":       true,
	"CHECKIN_REMINDER_AT":     "09:00",
	"CHECKOUT_REMINDER_AT":    "18:00",
	"ACTIVE_USER_DAYS":        30,
	"CATEGORY_RULES_FILE":     "",
	"HOLIDAYS_FILE":           "",
	"NOTION_API_KEY":          "",
	"NOTION_DATABASE_ID":      "",
	"NOTION_TASK_DATABASE_ID": "",
	"NOTION_BASE_URL":         "https://api.notion.com",
	"SYNC_QUEUE_URL":          "",
	"AWS_REGION":              "ap-northeast-2",
	"AWS_ENDPOINT":            "",
	"IS_LOCAL_DEV":            false,
	"OTEL_EXPORTER_ENDPOINT":  "",
	"OTEL_STDOUT":             false,
}

var instance *BotConfig
var once sync.Once

// GetBotConfig loads the configuration once for the bot process and exits on error.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading configuration: %s", err.Error())
		}
		if err := cfg.Validate(true); err != nil {
			logrus.Fatal(err)
		}
		instance = &cfg
	})

	return instance
}

// Load reads .env if present, then the environment.
func Load() (BotConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment only")
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	var cfg BotConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return BotConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or malformed value. The Telegram token is
// only required when requireToken is set.
func (c BotConfig) Validate(requireToken bool) error {
	var errs []error

	if requireToken && c.TelegramToken == "" {
		errs = append(errs, errors.New("could not get bot token (TELEGRAM_BOT_TOKEN)"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("could not get db url (DATABASE_URL)"))
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err))
	}
	for key, val := range map[string]string{
		"LATE_CUTOFF":          c.LateCutoff,
		"EARLY_LEAVE_CUTOFF":   c.EarlyLeaveCutoff,
		"CHECKIN_REMINDER_AT":  c.CheckInReminderAt,
		"CHECKOUT_REMINDER_AT": c.CheckOutReminderAt,
	} {
		if _, err := time.Parse("15:04", val); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: want HH:MM", key, val))
		}
	}
	if c.NotionAPIKey != "" && c.NotionDatabaseID == "" && c.NotionTaskDatabaseID == "" {
		errs = append(errs, errors.New("NOTION_API_KEY is set but no Notion database id is configured"))
	}

	return errors.Join(errs...)
}

// NotionEnabled reports whether the Notion mirror should be wired.
func (c BotConfig) NotionEnabled() bool {
	return c.NotionAPIKey != "" && (c.NotionDatabaseID != "" || c.NotionTaskDatabaseID != "")
}

// QueueEnabled reports whether events are published to the sync queue.
func (c BotConfig) QueueEnabled() bool {
	return c.SyncQueueURL != ""
}
