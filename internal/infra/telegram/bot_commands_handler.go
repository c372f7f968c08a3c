// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"

	"habit_reminder_service/internal/app"
	"habit_reminder_service/internal/domain/user"
	idb "habit_reminder_service/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands wires the /start and /help commands. /start carries the
// one-time link code issued by the settings API and attaches the sender's
// chat to the matching account.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	settingsService *app.SettingsService,
	userRepo user.Repository,
	baseLogger *logrus.Entry,
) {
	commandLogger := baseLogger.WithField("handler_group", "bot_commands")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := commandLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		code := strings.TrimSpace(c.Message().Payload)
		if code == "" {
			// No link code; tell the user whether this chat is already linked.
			if _, err := userRepo.GetByTelegramChatID(ctx, senderID); err == nil {
				return c.Send("This chat is already linked to your account. I will send your reminders here.")
			} else if err != idb.ErrUserNotFound {
				logCtx.WithError(err).Error("Error checking linked chat for /start command")
				return c.Send("Something went wrong while checking your account. Please try again later.")
			}
			return c.Send("Hi! I deliver habit reminders. Open your notification settings in the app, generate a link code and send it to me as /start <code>.")
		}

		userID, err := settingsService.LinkTelegramChat(ctx, code, senderID)
		if err != nil {
			if err == idb.ErrLinkCodeNotFound {
				logCtx.Info("Unknown or already used link code")
				return c.Send("That link code is unknown or was already used. Generate a fresh one in your notification settings.")
			}
			logCtx.WithError(err).Error("Error linking telegram chat")
			return c.Send("Something went wrong while linking your chat. Please try again later.")
		}

		logCtx.WithField("user_id", userID).Info("Telegram chat linked to user account")
		return c.Send("All set! Your chat is linked. Enable the Telegram channel in your notification settings to receive reminders here.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := commandLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString("I deliver your habit reminders and record your answers.\n\n")
		helpText.WriteString("`/start <code>`\n - Link this chat to your account using a code from your notification settings.\n\n")
		helpText.WriteString("When a reminder arrives, answer it with the Done or Dismiss buttons under the message.\n\n")
		helpText.WriteString("`/help`\n - Show this help message.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
