package handler

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `📋 사용 가능한 명령어

⏰ 출퇴근:
/in - 출근
/out - 퇴근
/today - 오늘 근무 현황 (/status)
/history [N] - 최근 세션 N개 (기본 10개)
/manual YYYY-MM-DD HH:MM [HH:MM] - 지난 날짜 수동 입력
    예: /manual 2024-03-04 09:00 18:00

📊 리포트:
/month [YYYY-MM] - 월간 리포트 (기본: 이번 달)
/week - 이번 주 리포트

📝 작업 기록:
/tasks 이름 시간; 이름 시간 - 오늘 작업 기록
    예: /tasks API 개발 4; 주간 회의 1.5
/taskstats [YYYY-MM] - 카테고리별 작업 시간

💡 하루에 여러 번 출근/퇴근할 수 있고, 근무 시간은 자동으로 합산됩니다.`

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := userIDOf(message.From)
	args := message.CommandArguments()

	switch message.Command() {
	case "start":
		h.sendStartMessage(message)
	case "help":
		h.sendText(chatID, helpText)

	// Attendance
	case "in", "checkin":
		h.checkIn(ctx, chatID, userID)
	case "out", "checkout":
		h.checkOut(ctx, chatID, userID)
	case "today", "status":
		h.todayStatus(ctx, chatID, userID)
	case "history":
		h.history(ctx, chatID, userID, args)
	case "manual":
		h.manualEntry(ctx, chatID, userID, args)

	// Reports
	case "month", "report":
		h.monthlyReport(ctx, chatID, userID, args)
	case "week":
		h.weeklyReport(ctx, chatID, userID)

	// Tasks
	case "tasks":
		h.logTasks(ctx, chatID, userID, args)
	case "taskstats":
		h.taskStats(ctx, chatID, userID, args)

	default:
		h.sendText(chatID, "❌ 알 수 없는 명령어입니다. /help 로 목록을 확인하세요.")
	}
}

func (h *Handler) sendStartMessage(message *tgbotapi.Message) {
	name := message.From.FirstName
	if name == "" {
		name = message.From.UserName
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "👋 안녕하세요, "+name+"님!\n\n"+helpText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 출근", callbackCheckIn),
			tgbotapi.NewInlineKeyboardButtonData("📊 월간 리포트", callbackMonthlyReport),
		),
	)
	h.send(msg)
}
