package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// checkIn opens a work session.
func (h *Handler) checkIn(ctx context.Context, chatID int64, userID string) {
	res, err := h.attendanceService.CheckIn(ctx, userID)
	if err != nil {
		h.sendError(chatID, "check_in", err)
		return
	}

	text := fmt.Sprintf(`✅ 출근 완료!

⏰ 시간: %s
📅 날짜: %s
🔢 오늘 %d번째 세션

💡 퇴근할 때 /out 을 입력하세요.`,
		shortTime(res.Time),
		res.Date,
		res.SessionNumber,
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 퇴근", callbackCheckOut),
		),
	)
	h.send(msg)
}

// checkOut closes the open session.
func (h *Handler) checkOut(ctx context.Context, chatID int64, userID string) {
	res, err := h.attendanceService.CheckOut(ctx, userID)
	if err != nil {
		h.sendError(chatID, "check_out", err)
		return
	}

	text := fmt.Sprintf(`👋 퇴근 완료!

⏰ 시간: %s
⌛ 이번 세션(%d번째): %s
📊 오늘 총 근무: %s

📝 /tasks 로 오늘 작업을 기록할 수 있습니다.`,
		shortTime(res.Time),
		res.SessionNumber,
		FormatMinutes(res.WorkMinutes),
		FormatMinutes(res.TotalWorkMinutesToday),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 다시 출근", callbackCheckIn),
			tgbotapi.NewInlineKeyboardButtonData("📊 월간 리포트", callbackMonthlyReport),
		),
	)
	h.send(msg)
}

func (h *Handler) todayStatus(ctx context.Context, chatID int64, userID string) {
	status, err := h.attendanceService.GetTodayStatus(ctx, userID)
	if err != nil {
		h.sendError(chatID, "today", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatDailyStatus(status))
	button := tgbotapi.NewInlineKeyboardButtonData("🏢 출근", callbackCheckIn)
	if status.OpenSession != nil {
		button = tgbotapi.NewInlineKeyboardButtonData("🏁 퇴근", callbackCheckOut)
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(button))
	h.send(msg)
}

func (h *Handler) history(ctx context.Context, chatID int64, userID, args string) {
	limit := 0
	if arg := strings.TrimSpace(args); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			h.sendText(chatID, "❌ 사용법: /history [개수]")
			return
		}
		limit = n
	}

	sessions, err := h.attendanceService.GetRecentSessions(ctx, userID, limit)
	if err != nil {
		h.sendError(chatID, "history", err)
		return
	}
	h.sendText(chatID, FormatHistory(sessions))
}

func (h *Handler) manualEntry(ctx context.Context, chatID int64, userID, args string) {
	input, err := parseManualArgs(args)
	if err != nil {
		h.sendText(chatID, "❌ "+err.Error()+"\n사용법: /manual YYYY-MM-DD HH:MM [HH:MM]")
		return
	}

	res, err := h.attendanceService.ManualEntry(ctx, userID, input)
	if err != nil {
		h.sendError(chatID, "manual_entry", err)
		return
	}

	text := fmt.Sprintf("✍️ 수동 입력 완료\n\n📅 날짜: %s\n⏰ 출근: %s", res.Date, shortTime(res.CheckIn))
	if res.CheckOut != nil {
		text += fmt.Sprintf("\n🏁 퇴근: %s\n⌛ 근무: %s", shortTime(*res.CheckOut), FormatMinutes(res.WorkMinutes))
	} else {
		text += "\n🟢 근무 중으로 기록되었습니다. 퇴근은 /out 으로 처리하세요."
	}
	h.sendText(chatID, text)
}

func parseManualArgs(args string) (service.ManualEntryInput, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return service.ManualEntryInput{}, fmt.Errorf("날짜와 출근 시간이 필요합니다")
	}

	input := service.ManualEntryInput{Date: fields[0], CheckIn: fields[1]}
	if len(fields) == 3 {
		out := fields[2]
		input.CheckOut = &out
	}
	return input, nil
}
