package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"habit_reminder_service/internal/domain/user"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrDuplicateEmail = fmt.Errorf("user with this email already exists")
var ErrSettingsNotFound = fmt.Errorf("notification settings not found")
var ErrLinkCodeNotFound = fmt.Errorf("telegram link code not found")

type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	query := `INSERT INTO users (name, email, telegram_chat_id, profile_picture, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.TelegramChatID, u.ProfilePicture, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading new user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

const userColumns = `id, name, email, telegram_chat_id, profile_picture, created_at, updated_at`

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.TelegramChatID, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_chat_id = ?`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(&u.ID, &u.Name, &u.Email, &u.TelegramChatID, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by Telegram chat ID: %w", err)
	}
	return u, nil
}

func (r *SQLiteUserRepository) UpdateTelegramChatID(ctx context.Context, userID, chatID int64) error {
	query := `UPDATE users SET telegram_chat_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, chatID, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("error updating telegram chat ID: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for chat ID update: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *SQLiteUserRepository) UpdateProfilePicture(ctx context.Context, userID int64, storedName string) error {
	query := `UPDATE users SET profile_picture = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, storedName, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("error updating profile picture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for profile picture update: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *SQLiteUserRepository) GetSettings(ctx context.Context, userID int64) (*user.NotificationSettings, error) {
	query := `SELECT user_id, email_enabled, telegram_enabled, quiet_hours_start, quiet_hours_end, updated_at
               FROM notification_settings WHERE user_id = ?`
	s := &user.NotificationSettings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &s.EmailEnabled, &s.TelegramEnabled, &s.QuietHoursStart, &s.QuietHoursEnd, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting notification settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteUserRepository) SaveSettings(ctx context.Context, settings *user.NotificationSettings) error {
	now := time.Now().UTC()
	query := `INSERT INTO notification_settings (user_id, email_enabled, telegram_enabled, quiet_hours_start, quiet_hours_end, updated_at)
               VALUES (?, ?, ?, ?, ?, ?)
               ON CONFLICT(user_id) DO UPDATE SET email_enabled = excluded.email_enabled,
                   telegram_enabled = excluded.telegram_enabled,
                   quiet_hours_start = excluded.quiet_hours_start,
                   quiet_hours_end = excluded.quiet_hours_end,
                   updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, settings.UserID, settings.EmailEnabled, settings.TelegramEnabled, settings.QuietHoursStart, settings.QuietHoursEnd, now)
	if err != nil {
		return fmt.Errorf("error saving notification settings: %w", err)
	}
	settings.UpdatedAt = now
	return nil
}

func (r *SQLiteUserRepository) CreateLinkCode(ctx context.Context, userID int64, code string) error {
	query := `INSERT INTO telegram_link_codes (code, user_id, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, code, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error creating telegram link code: %w", err)
	}
	return nil
}

// ConsumeLinkCode resolves the code to a user id and deletes it so it cannot
// be replayed.
func (r *SQLiteUserRepository) ConsumeLinkCode(ctx context.Context, code string) (int64, error) {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for link code: %w", err)
	}
	defer txn.Rollback()

	var userID int64
	err = txn.QueryRowContext(ctx, `SELECT user_id FROM telegram_link_codes WHERE code = ?`, code).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrLinkCodeNotFound
		}
		return 0, fmt.Errorf("error resolving telegram link code: %w", err)
	}

	if _, err := txn.ExecContext(ctx, `DELETE FROM telegram_link_codes WHERE code = ?`, code); err != nil {
		return 0, fmt.Errorf("error deleting telegram link code: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit link code consumption: %w", err)
	}
	return userID, nil
}
