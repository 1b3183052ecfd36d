package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"attendance-bot/internal/api"
	"attendance-bot/internal/app"
	"attendance-bot/internal/config"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/reminder"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/telegram"
	"attendance-bot/pkg/telemetry"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logging.SetLevel(cfg.LogLevel)
	logrus.Info("Config initialized...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer("attendance-bot", cfg.OTelExporterEndpoint, cfg.OTelStdout)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	db, err := repository.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		// Close the database connection
		if err := repository.CloseDatabase(db); err != nil {
			logrus.WithError(err).Warn("Error closing database")
		}
	}()

	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build service options")
	}

	notifier, err := app.NewNotifier(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to set up mirrors")
	}
	opts.Notifier = notifier

	services, err := app.NewServices(db, opts)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create services")
	}

	// Load the non-working day calendar if one is configured
	if cfg.HolidaysFile != "" {
		if _, err := services.Calendar.LoadFromJSON(ctx, cfg.HolidaysFile); err != nil {
			logrus.WithError(err).Warn("Failed to import holidays, continuing without them")
		}
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.LogLevel == "debug")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create Telegram client")
	}
	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		services.Attendance,
		services.Reports,
		services.Tasks,
		services.Users,
		opts.Clock,
	)

	if cfg.RemindersEnabled {
		scheduler, err := reminder.New(
			reminder.Config{CheckInAt: cfg.CheckInReminderAt, CheckOutAt: cfg.CheckOutReminderAt},
			opts.Clock,
			services.Users,
			services.Attendance,
			services.Calendar,
			handler.NewReminderSender(client),
		)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create reminder scheduler")
		}
		go scheduler.Run(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(api.NewRouter(services), "api"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("HTTP API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("HTTP API stopped")
		}
	}()

	// Start processing updates
	done := make(chan struct{})
	go func() {
		botHandler.HandleUpdates(ctx, client.Updates())
		close(done)
	}()

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()
	logrus.Info("Shutting down...")

	client.Stop()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP API forced to shutdown")
	}

	// Wait for in-flight mirror deliveries
	notifier.Wait()

	logrus.Info("Bot stopped gracefully")
}
