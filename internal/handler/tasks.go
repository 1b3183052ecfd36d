package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/clock"
	"attendance-bot/internal/service"
)

func (h *Handler) logTasks(ctx context.Context, chatID int64, userID, args string) {
	inputs, err := parseTasks(args)
	if err != nil {
		h.sendText(chatID, "❌ "+err.Error()+"\n사용법: /tasks 이름 시간; 이름 시간\n예: /tasks API 개발 4; 주간 회의 1.5")
		return
	}

	entries, err := h.taskService.LogTasks(ctx, userID, inputs)
	if err != nil {
		h.sendError(chatID, "log_tasks", err)
		return
	}
	h.sendText(chatID, FormatTaskEntries(entries))
}

func (h *Handler) taskStats(ctx context.Context, chatID int64, userID, args string) {
	yearMonth := strings.TrimSpace(args)
	if yearMonth == "" {
		yearMonth = h.clock.Now().Format(clock.MonthLayout)
	}

	stats, err := h.taskService.GetMonthlyTaskStats(ctx, userID, yearMonth)
	if err != nil {
		h.sendError(chatID, "task_stats", err)
		return
	}
	h.sendText(chatID, FormatCategoryStats(yearMonth, stats))
}

// parseTasks reads "name hours; name hours" where the last word of each item
// is the hour count, optionally suffixed with h or 시간.
func parseTasks(args string) ([]service.TaskInput, error) {
	var inputs []service.TaskInput
	items := strings.FieldsFunc(args, func(r rune) bool { return r == ';' || r == '\n' })
	for _, item := range items {
		fields := strings.Fields(item)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("작업 시간이 없습니다: %q", strings.TrimSpace(item))
		}

		raw := fields[len(fields)-1]
		raw = strings.TrimSuffix(raw, "시간")
		raw = strings.TrimSuffix(strings.ToLower(raw), "h")
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("작업 시간을 읽을 수 없습니다: %q", fields[len(fields)-1])
		}

		inputs = append(inputs, service.TaskInput{
			Name:  strings.Join(fields[:len(fields)-1], " "),
			Hours: hours,
		})
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("작업을 하나 이상 입력하세요")
	}
	return inputs, nil
}
