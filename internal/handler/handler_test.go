package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"attendance-bot/internal/app"
	"attendance-bot/internal/clock"
	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var kst = time.FixedZone("KST", 9*60*60)

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no message sent")
	}
	return f.messages[len(f.messages)-1]
}

func newTestHandler(t *testing.T, now time.Time) (*Handler, *fakeSender, *clock.Fixed) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.OpenDatabase(repository.DriverSQLite, fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	clk := clock.NewFixed(now)
	services, err := app.NewServices(db, app.Options{Clock: clk, Policy: service.DefaultReportPolicy()})
	if err != nil {
		t.Fatalf("services: %v", err)
	}

	sender := &fakeSender{}
	h := NewHandler(sender, services.Attendance, services.Reports, services.Tasks, services.Users, clk)
	return h, sender, clk
}

func command(userID int64, text string) tgbotapi.Update {
	length := strings.IndexByte(text, ' ')
	if length < 0 {
		length = len(text)
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID, FirstName: "Minji", UserName: "minji"},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func TestCheckInThenCheckOut(t *testing.T) {
	h, sender, clk := newTestHandler(t, time.Date(2024, 3, 4, 9, 0, 0, 0, kst))
	ctx := context.Background()

	h.HandleUpdate(ctx, command(42, "/in"))
	msg := sender.last(t)
	if msg.ChatID != 42 {
		t.Fatalf("chat id = %d, want 42", msg.ChatID)
	}
	if !strings.Contains(msg.Text, "출근 완료") || !strings.Contains(msg.Text, "09:00") {
		t.Fatalf("check-in reply = %q", msg.Text)
	}
	if msg.ReplyMarkup == nil {
		t.Fatal("check-in reply has no check-out button")
	}

	clk.Advance(8*time.Hour + 30*time.Minute)
	h.HandleUpdate(ctx, command(42, "/out"))
	msg = sender.last(t)
	if !strings.Contains(msg.Text, "퇴근 완료") || !strings.Contains(msg.Text, "8시간 30분") {
		t.Fatalf("check-out reply = %q", msg.Text)
	}
}

func TestInFlightUpdateSurvivesShutdown(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 9, 0, 0, 0, kst))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.dispatch(ctx, command(42, "/in"))
	h.wg.Wait()

	if msg := sender.last(t); !strings.Contains(msg.Text, "출근 완료") {
		t.Fatalf("reply after shutdown = %q, want check-in confirmation", msg.Text)
	}
}

func TestHandleUpdatesDrainsClosedChannel(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 9, 0, 0, 0, kst))

	updates := make(chan tgbotapi.Update, 1)
	updates <- command(42, "/in")
	close(updates)
	h.HandleUpdates(context.Background(), updates)

	if msg := sender.last(t); !strings.Contains(msg.Text, "출근 완료") {
		t.Fatalf("reply = %q, want check-in confirmation", msg.Text)
	}
}

func TestDuplicateCheckInShowsReason(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 9, 0, 0, 0, kst))
	ctx := context.Background()

	h.HandleUpdate(ctx, command(7, "/in"))
	h.HandleUpdate(ctx, command(7, "/in"))

	msg := sender.last(t)
	if !strings.HasPrefix(msg.Text, "❌") || !strings.Contains(msg.Text, "이미 출근 중") {
		t.Fatalf("duplicate check-in reply = %q", msg.Text)
	}
}

func TestCheckOutWithoutSession(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 18, 0, 0, 0, kst))

	h.HandleUpdate(context.Background(), command(7, "/out"))

	if msg := sender.last(t); !strings.HasPrefix(msg.Text, "❌") {
		t.Fatalf("check-out reply = %q, want error", msg.Text)
	}
}

func TestMonthlyReportCommand(t *testing.T) {
	h, sender, clk := newTestHandler(t, time.Date(2024, 3, 4, 9, 0, 0, 0, kst))
	ctx := context.Background()

	h.HandleUpdate(ctx, command(5, "/in"))
	clk.Advance(9 * time.Hour)
	h.HandleUpdate(ctx, command(5, "/out"))

	h.HandleUpdate(ctx, command(5, "/month 2024-03"))
	msg := sender.last(t)
	for _, want := range []string{"2024-03", "근무일: 1일", "총 근무: 9시간", "결근: 1일 (2024-03-01)"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("report = %q, missing %q", msg.Text, want)
		}
	}

	h.HandleUpdate(ctx, command(5, "/month 2024-13"))
	if msg := sender.last(t); !strings.Contains(msg.Text, "YYYY-MM") {
		t.Fatalf("bad month reply = %q", msg.Text)
	}
}

func TestManualCommand(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 6, 12, 0, 0, 0, kst))
	ctx := context.Background()

	h.HandleUpdate(ctx, command(9, "/manual 2024-03-05 09:10 18:40"))
	msg := sender.last(t)
	if !strings.Contains(msg.Text, "수동 입력 완료") || !strings.Contains(msg.Text, "9시간 30분") {
		t.Fatalf("manual reply = %q", msg.Text)
	}

	h.HandleUpdate(ctx, command(9, "/manual 2024-03-05"))
	if msg := sender.last(t); !strings.Contains(msg.Text, "사용법") {
		t.Fatalf("usage reply = %q", msg.Text)
	}

	h.HandleUpdate(ctx, command(9, "/history"))
	if msg := sender.last(t); !strings.Contains(msg.Text, "2024-03-05 #1 09:10 ~ 18:40") {
		t.Fatalf("history reply = %q", msg.Text)
	}
}

func TestTasksCommand(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 17, 0, 0, 0, kst))
	ctx := context.Background()

	h.HandleUpdate(ctx, command(3, "/tasks API 개발 4; 주간 회의 1.5"))
	msg := sender.last(t)
	if !strings.Contains(msg.Text, "합계: 5시간 30분") {
		t.Fatalf("tasks reply = %q", msg.Text)
	}

	h.HandleUpdate(ctx, command(3, "/taskstats"))
	if msg := sender.last(t); !strings.Contains(msg.Text, "2024-03") {
		t.Fatalf("taskstats reply = %q", msg.Text)
	}
}

func TestUnknownCommandAndPlainText(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 9, 0, 0, 0, kst))
	ctx := context.Background()

	h.HandleUpdate(ctx, command(1, "/dance"))
	if msg := sender.last(t); !strings.Contains(msg.Text, "알 수 없는 명령어") {
		t.Fatalf("unknown command reply = %q", msg.Text)
	}

	update := command(1, "hello")
	update.Message.Entities = nil
	h.HandleUpdate(ctx, update)
	if msg := sender.last(t); !strings.Contains(msg.Text, "/help") {
		t.Fatalf("plain text reply = %q", msg.Text)
	}
}

func TestCallbackCheckIn(t *testing.T) {
	h, sender, _ := newTestHandler(t, time.Date(2024, 3, 4, 8, 55, 0, 0, kst))

	h.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: 11, FirstName: "Jisoo"},
		Message: &tgbotapi.Message{
			MessageID: 100,
			Chat:      &tgbotapi.Chat{ID: 11},
		},
		Data: callbackCheckIn,
	}})

	if sender.requests != 2 {
		t.Fatalf("requests = %d, want 2 (answer and keyboard removal)", sender.requests)
	}
	if msg := sender.last(t); !strings.Contains(msg.Text, "출근 완료") {
		t.Fatalf("callback reply = %q", msg.Text)
	}
}

func TestReminderSender(t *testing.T) {
	sender := &fakeSender{}
	rs := NewReminderSender(sender)
	ctx := context.Background()

	if err := rs.SendCheckInReminder(ctx, &models.User{UserID: "not-a-chat"}); err == nil {
		t.Fatal("expected error for non-numeric user id")
	}

	open := &models.AttendanceSession{CheckIn: "08:45:00", Status: models.StatusOpen}
	err := rs.SendCheckOutReminder(ctx, &models.User{UserID: "77", UserName: "Hana"}, &models.DailyStatus{OpenSession: open})
	if err != nil {
		t.Fatalf("SendCheckOutReminder: %v", err)
	}
	msg := sender.last(t)
	if msg.ChatID != 77 || !strings.Contains(msg.Text, "Hana") || !strings.Contains(msg.Text, "08:45") {
		t.Fatalf("reminder = %+v", msg)
	}
}
