package handler

import (
	"context"
	"fmt"

	"attendance-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ReminderSender delivers scheduler reminders as chat messages with a
// one-tap button.
type ReminderSender struct {
	client sendClient
}

type sendClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func NewReminderSender(client sendClient) *ReminderSender {
	return &ReminderSender{client: client}
}

func (r *ReminderSender) SendCheckInReminder(ctx context.Context, user *models.User) error {
	chatID, ok := user.ChatID()
	if !ok {
		return fmt.Errorf("user %q has no telegram chat id", user.UserID)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("⏰ %s님, 아직 출근 기록이 없습니다.\n출근하셨다면 버튼을 눌러주세요.", user.DisplayName()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 출근", callbackCheckIn),
		),
	)
	_, err := r.client.Send(msg)
	return err
}

func (r *ReminderSender) SendCheckOutReminder(ctx context.Context, user *models.User, status *models.DailyStatus) error {
	chatID, ok := user.ChatID()
	if !ok {
		return fmt.Errorf("user %q has no telegram chat id", user.UserID)
	}

	since := "-"
	if status != nil && status.OpenSession != nil {
		since = shortTime(status.OpenSession.CheckIn)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🏁 %s님, %s부터 근무 중입니다.\n퇴근하셨다면 버튼을 눌러주세요.", user.DisplayName(), since))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 퇴근", callbackCheckOut),
			tgbotapi.NewInlineKeyboardButtonData("📅 오늘 현황", callbackToday),
		),
	)
	_, err := r.client.Send(msg)
	return err
}
