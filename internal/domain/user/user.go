package user

import (
	"database/sql"
	"time"
)

// User represents an account in the system. Authentication is handled
// upstream; requests arrive already carrying a user id.
type User struct {
	ID             int64
	Name           string
	Email          string
	TelegramChatID sql.NullInt64  // Set once the user links the bot via /start
	ProfilePicture sql.NullString // Stored file name, not the original upload name
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NotificationSettings holds the per-user channel configuration. Quiet hours
// are optional "HH:MM" local-time bounds; both are set or both are empty.
type NotificationSettings struct {
	UserID          int64
	EmailEnabled    bool
	TelegramEnabled bool
	QuietHoursStart sql.NullString
	QuietHoursEnd   sql.NullString
	UpdatedAt       time.Time
}

// InQuietHours reports whether the given moment falls inside the user's quiet
// window. A window ending before it starts wraps past midnight.
func (s *NotificationSettings) InQuietHours(t time.Time) bool {
	if !s.QuietHoursStart.Valid || !s.QuietHoursEnd.Valid {
		return false
	}
	start, end := s.QuietHoursStart.String, s.QuietHoursEnd.String
	if start == end {
		return false
	}
	// "HH:MM" strings compare correctly as text.
	cur := t.Format("15:04")
	if start < end {
		return cur >= start && cur < end
	}
	return cur >= start || cur < end
}

// EnabledFor reports whether the named channel is switched on.
func (s *NotificationSettings) EnabledFor(channel string) bool {
	switch channel {
	case ChannelEmail:
		return s.EmailEnabled
	case ChannelTelegram:
		return s.TelegramEnabled
	default:
		return false
	}
}

// Channel names as persisted in notification settings.
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)
