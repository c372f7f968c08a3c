package notify

import (
	"context"

	"habit_reminder_service/internal/domain/reminder"
	"habit_reminder_service/internal/domain/user"
)

// Channel defines an interface for delivering a reminder notification over a
// single transport. This decouples the dispatch logic from the specific
// delivery libraries.
type Channel interface {
	// Name matches the channel key used in notification settings.
	Name() string
	Send(ctx context.Context, recipient *user.User, rem *reminder.Reminder, text string) error
}
