package repository

import (
	"context"
	"testing"
	"time"

	"attendance-bot/internal/models"
)

func TestNonWorkingDayBulkReplace(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormNonWorkingDayRepository(newTestDB(t))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}

	initial := []models.NonWorkingDay{
		{Date: "2024-01-01", Year: 2024, Month: 1, Day: 1},
		{Date: "2024-03-08", Year: 2024, Month: 3, Day: 8},
		{Date: "2025-01-01", Year: 2025, Month: 1, Day: 1},
	}
	if err := repo.BulkReplace(ctx, initial); err != nil {
		t.Fatalf("initial replace: %v", err)
	}

	replacement := []models.NonWorkingDay{
		{Date: "2024-05-01", Year: 2024, Month: 5, Day: 1},
	}
	if err := repo.BulkReplace(ctx, replacement); err != nil {
		t.Fatalf("replace 2024: %v", err)
	}

	all, err := repo.GetBetween(ctx, "2024-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("get between: %v", err)
	}
	if len(all) != 2 || all[0].Date != "2024-05-01" || all[1].Date != "2025-01-01" {
		t.Fatalf("days after replace = %+v", all)
	}

	between, err := repo.GetBetween(ctx, "2024-05-01", "2024-05-31")
	if err != nil || len(between) != 1 {
		t.Fatalf("between = %+v, %v", between, err)
	}

	ok, err := repo.IsNonWorkingDay(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || !ok {
		t.Fatalf("is non-working = %v, %v; want true", ok, err)
	}
	ok, err = repo.IsNonWorkingDay(ctx, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
	if err != nil || ok {
		t.Fatalf("replaced day still non-working = %v, %v", ok, err)
	}
}
