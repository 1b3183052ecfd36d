package handler

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"attendance-bot/internal/clock"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Callback data of inline buttons.
const (
	callbackCheckIn       = "command_check_in"
	callbackCheckOut      = "command_check_out"
	callbackMonthlyReport = "command_monthly_report"
	callbackToday         = "command_today"
)

type Handler struct {
	client            telegram.Sender
	attendanceService *service.AttendanceService
	reportService     *service.ReportService
	taskService       *service.TaskService
	userService       *service.UserService
	clock             clock.Clock
	logger            *logrus.Logger
	wg                sync.WaitGroup
}

func NewHandler(
	client telegram.Sender,
	attendanceService *service.AttendanceService,
	reportService *service.ReportService,
	taskService *service.TaskService,
	userService *service.UserService,
	clk clock.Clock,
) *Handler {
	return &Handler{
		client:            client,
		attendanceService: attendanceService,
		reportService:     reportService,
		taskService:       taskService,
		userService:       userService,
		clock:             clk,
		logger:            logging.New(),
	}
}

// HandleUpdates handles every update in its own goroutine until the channel
// closes or ctx is cancelled, then waits for in-flight updates.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer h.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.dispatch(ctx, update)
		}
	}
}

// dispatch handles one update in the background. An update already being
// handled runs to completion even after ctx is cancelled.
func (h *Handler) dispatch(ctx context.Context, update tgbotapi.Update) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.HandleUpdate(context.WithoutCancel(ctx), update)
	}()
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WithField("panic", r).Error("Update handler panicked")
		}
	}()

	// Inline keyboard buttons
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

// handleCallbackQuery handles inline keyboard buttons.
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer the callback so the button stops spinning
	if _, err := h.client.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		h.logger.WithError(err).Debug("Failed to answer callback")
	}

	if callback.Message == nil || callback.From == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	userID := userIDOf(callback.From)
	h.touch(ctx, callback.From)

	// Remove the keyboard
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	if _, err := h.client.Request(edit); err != nil {
		h.logger.WithError(err).Debug("Failed to remove inline keyboard")
	}

	switch callback.Data {
	case callbackCheckIn:
		h.checkIn(ctx, chatID, userID)
	case callbackCheckOut:
		h.checkOut(ctx, chatID, userID)
	case callbackMonthlyReport:
		h.monthlyReport(ctx, chatID, userID, "")
	case callbackToday:
		h.todayStatus(ctx, chatID, userID)
	default:
		h.logger.WithField("data", callback.Data).Warn("Unknown callback data")
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	h.logger.Infof("[%s] %s", message.From.UserName, message.Text)

	h.touch(ctx, message.From)

	// Commands
	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.sendText(message.Chat.ID, "명령어로 사용해 주세요. /help 로 목록을 볼 수 있습니다.")
}

func (h *Handler) touch(ctx context.Context, from *tgbotapi.User) {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.UserName
	}
	if err := h.userService.Touch(ctx, userIDOf(from), name, ""); err != nil {
		h.logger.WithError(err).WithField("user_id", from.ID).Warn("Failed to record user activity")
	}
}

func userIDOf(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func (h *Handler) send(msg tgbotapi.Chattable) {
	if _, err := h.client.Send(msg); err != nil {
		h.logger.WithError(err).Error("Failed to send message")
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

// sendError turns domain errors into their reason and hides everything else.
func (h *Handler) sendError(chatID int64, action string, err error) {
	if reason := service.Reason(err); reason != "" {
		h.sendText(chatID, "❌ "+reason)
		return
	}

	h.logger.WithError(err).WithField("action", action).Error("Command failed")
	h.sendText(chatID, "❌ 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.")
}
