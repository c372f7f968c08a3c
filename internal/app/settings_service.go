package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"habit_reminder_service/internal/domain/user"
	idb "habit_reminder_service/internal/infra/database"

	"github.com/google/uuid"
)

// ErrTelegramNotLinked reports an attempt to enable the Telegram channel
// before the user has linked a chat via the bot.
var ErrTelegramNotLinked = fmt.Errorf("telegram channel is not linked for this user")

// ErrInvalidQuietHours reports quiet hours that are not a pair of "HH:MM"
// values (or a pair of empty strings to clear the window).
var ErrInvalidQuietHours = fmt.Errorf("invalid quiet hours window")

// SettingsService manages per-user notification channel configuration.
type SettingsService struct {
	userRepo user.Repository
}

func NewSettingsService(ur user.Repository) *SettingsService {
	return &SettingsService{userRepo: ur}
}

// Get returns the user's notification settings, falling back to the defaults
// (email on, telegram off) when the user never saved any.
func (s *SettingsService) Get(ctx context.Context, userID int64) (*user.NotificationSettings, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	settings, err := s.userRepo.GetSettings(ctx, userID)
	if err != nil {
		if err == idb.ErrSettingsNotFound {
			return defaultSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

// Update persists the user's channel configuration. Enabling Telegram
// requires a linked chat id. Quiet hours are "HH:MM" bounds, both set or both
// empty; an empty pair clears the window.
func (s *SettingsService) Update(ctx context.Context, userID int64, emailEnabled, telegramEnabled bool, quietHoursStart, quietHoursEnd string) (*user.NotificationSettings, error) {
	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if telegramEnabled && !owner.TelegramChatID.Valid {
		return nil, ErrTelegramNotLinked
	}

	quietStart, quietEnd, err := parseQuietHours(quietHoursStart, quietHoursEnd)
	if err != nil {
		return nil, err
	}

	settings := &user.NotificationSettings{
		UserID:          userID,
		EmailEnabled:    emailEnabled,
		TelegramEnabled: telegramEnabled,
		QuietHoursStart: quietStart,
		QuietHoursEnd:   quietEnd,
	}
	if err := s.userRepo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func parseQuietHours(start, end string) (sql.NullString, sql.NullString, error) {
	var none sql.NullString
	if start == "" && end == "" {
		return none, none, nil
	}
	if start == "" || end == "" {
		return none, none, fmt.Errorf("%w: both bounds are required", ErrInvalidQuietHours)
	}
	for _, bound := range []string{start, end} {
		if _, err := time.Parse("15:04", bound); err != nil {
			return none, none, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidQuietHours, bound)
		}
	}
	return sql.NullString{String: start, Valid: true}, sql.NullString{String: end, Valid: true}, nil
}

// CreateTelegramLinkCode issues a one-time code the user passes to the bot's
// /start command to attach their chat to the account.
func (s *SettingsService) CreateTelegramLinkCode(ctx context.Context, userID int64) (string, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	code := uuid.New().String()
	if err := s.userRepo.CreateLinkCode(ctx, userID, code); err != nil {
		return "", err
	}
	return code, nil
}

// LinkTelegramChat consumes a link code and records the chat id on the user.
func (s *SettingsService) LinkTelegramChat(ctx context.Context, code string, chatID int64) (int64, error) {
	userID, err := s.userRepo.ConsumeLinkCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if err := s.userRepo.UpdateTelegramChatID(ctx, userID, chatID); err != nil {
		return 0, err
	}
	return userID, nil
}
