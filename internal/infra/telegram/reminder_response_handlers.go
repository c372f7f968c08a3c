// internal/infra/telegram/reminder_response_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"habit_reminder_service/internal/app"
	"habit_reminder_service/internal/domain/reminder"
	idb "habit_reminder_service/internal/infra/database"

	"gopkg.in/telebot.v3"
)

// RegisterReminderResponseHandlers wires the inline Done/Dismiss button
// callbacks into the reminder service.
func RegisterReminderResponseHandlers(ctx context.Context, b *telebot.Bot, reminderService *app.ReminderService) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimSpace(c.Callback().Data)

		var value reminder.Value
		var idStr string
		switch {
		case strings.HasPrefix(data, "ans_done_"):
			value = reminder.ValueCompleted
			idStr = strings.TrimPrefix(data, "ans_done_")
		case strings.HasPrefix(data, "ans_dismiss_"):
			value = reminder.ValueDismissed
			idStr = strings.TrimPrefix(data, "ans_dismiss_")
		default:
			c.Bot().OnError(fmt.Errorf("unhandled callback data by reminder_response_handler: %s", data), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}

		reminderID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.Bot().OnError(fmt.Errorf("invalid reminder ID '%s' in callback: %w", idStr, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Broken reminder reference."})
		}

		err = reminderService.Answer(ctx, reminderID, value)
		if err != nil {
			if errors.Is(err, idb.ErrReminderNotFound) {
				// Possibly a stale callback on a deleted reminder.
				return c.Respond(&telebot.CallbackResponse{Text: "This reminder no longer exists."})
			}
			var te *reminder.TransitionError
			if errors.As(err, &te) {
				return c.Respond(&telebot.CallbackResponse{Text: "This reminder was already answered."})
			}
			c.Bot().OnError(fmt.Errorf("error answering reminder %d: %w", reminderID, err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		if value == reminder.ValueCompleted {
			return c.Respond(&telebot.CallbackResponse{Text: "Nice, marked as done!"})
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Dismissed."})
	})
}
