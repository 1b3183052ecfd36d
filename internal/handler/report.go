package handler

import (
	"context"
	"strings"

	"attendance-bot/internal/clock"
)

func (h *Handler) monthlyReport(ctx context.Context, chatID int64, userID, args string) {
	yearMonth := strings.TrimSpace(args)
	if yearMonth == "" {
		yearMonth = h.clock.Now().Format(clock.MonthLayout)
	}

	report, err := h.reportService.GetMonthlyReport(ctx, userID, yearMonth)
	if err != nil {
		h.sendError(chatID, "monthly_report", err)
		return
	}
	h.sendText(chatID, FormatReport("📊 "+yearMonth+" 월간 리포트", report))
}

func (h *Handler) weeklyReport(ctx context.Context, chatID int64, userID string) {
	report, err := h.reportService.GetWeeklyReport(ctx, userID)
	if err != nil {
		h.sendError(chatID, "weekly_report", err)
		return
	}
	h.sendText(chatID, FormatReport("📅 주간 리포트 ("+report.Label+")", report))
}
