package user

import (
	"context"
)

// Repository defines the operations for persisting and retrieving User
// entities and their notification settings.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*User, error)
	UpdateTelegramChatID(ctx context.Context, userID, chatID int64) error
	UpdateProfilePicture(ctx context.Context, userID int64, storedName string) error

	// GetSettings returns the user's notification settings. Implementations
	// report a not-found error when no row exists; the service layer applies
	// defaults.
	GetSettings(ctx context.Context, userID int64) (*NotificationSettings, error)
	SaveSettings(ctx context.Context, settings *NotificationSettings) error

	// CreateLinkCode stores a one-time code used to link a Telegram chat to
	// the user account. ConsumeLinkCode resolves and deletes it.
	CreateLinkCode(ctx context.Context, userID int64, code string) error
	ConsumeLinkCode(ctx context.Context, code string) (int64, error)
}
