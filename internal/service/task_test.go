package service

import (
	"context"
	"errors"
	"testing"

	"attendance-bot/internal/category"
)

func TestLogTasksClassifiesAndNotifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-04", "18:00"))

	entries, err := f.tasks.LogTasks(ctx, "u1", []TaskInput{
		{Name: "주간 회의", Hours: 1},
		{Name: "API 개발", Hours: 6.5},
		{Name: "lunch walk", Hours: 0.5},
	})
	if err != nil {
		t.Fatalf("log tasks: %v", err)
	}

	want := []string{category.Meeting, category.Development, category.Other}
	for i, e := range entries {
		if e.Category != want[i] {
			t.Fatalf("entry %d category = %s, want %s", i, e.Category, want[i])
		}
		if e.Date != "2024-03-04" {
			t.Fatalf("entry date = %s, want 2024-03-04", e.Date)
		}
	}

	if len(f.notifier.tasks) != 1 {
		t.Fatalf("task events = %d, want 1", len(f.notifier.tasks))
	}
	event := f.notifier.tasks[0]
	if event.TotalHours() != 8 || event.MonthToDate != 8 {
		t.Fatalf("event hours = %v / %v, want 8 / 8", event.TotalHours(), event.MonthToDate)
	}

	stats, err := f.tasks.GetMonthlyTaskStats(ctx, "u1", "2024-03")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 3 || stats[0].Category != category.Development || stats[0].TotalHours != 6.5 {
		t.Fatalf("stats = %+v", stats)
	}

	today, err := f.tasks.GetTodayTasks(ctx, "u1")
	if err != nil || len(today) != 3 {
		t.Fatalf("today tasks = %d, %v", len(today), err)
	}
}

func TestLogTasksValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, at("2024-03-04", "18:00"))

	cases := map[string][]TaskInput{
		"empty list":     nil,
		"blank name":     {{Name: "  ", Hours: 1}},
		"negative hours": {{Name: "review", Hours: -1}},
		"too many hours": {{Name: "review", Hours: 25}},
	}
	for name, inputs := range cases {
		if _, err := f.tasks.LogTasks(ctx, "u1", inputs); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: err = %v, want ErrValidation", name, err)
		}
	}
	if len(f.notifier.tasks) != 0 {
		t.Fatalf("task events = %d, want 0", len(f.notifier.tasks))
	}

	if _, err := f.tasks.GetMonthlyTaskStats(ctx, "u1", "2024-3"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad month err = %v, want ErrValidation", err)
	}
}
