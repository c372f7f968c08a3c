// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"habit_reminder_service/internal/domain/reminder"
	"habit_reminder_service/internal/domain/user"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the notify.Channel interface using the
// gopkg.in/telebot.v3 library. Reminder messages carry inline Done/Dismiss
// buttons whose callbacks are handled by RegisterReminderResponseHandlers.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

func (tba *TelebotAdapter) Name() string {
	return user.ChannelTelegram
}

// Send delivers a reminder notification to the user's linked chat.
func (tba *TelebotAdapter) Send(_ context.Context, recipient *user.User, rem *reminder.Reminder, text string) error {
	if !recipient.TelegramChatID.Valid {
		return fmt.Errorf("user %d has no linked telegram chat", recipient.ID)
	}

	replyMarkup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnDone := replyMarkup.Data("Done", fmt.Sprintf("ans_done_%d", rem.ID))
	btnDismiss := replyMarkup.Data("Dismiss", fmt.Sprintf("ans_dismiss_%d", rem.ID))
	replyMarkup.Inline(replyMarkup.Row(btnDone, btnDismiss))

	chat := &telebot.User{ID: recipient.TelegramChatID.Int64}
	_, err := tba.bot.Send(chat, text, &telebot.SendOptions{ReplyMarkup: replyMarkup})
	return err
}
