// internal/infra/database/sqlite_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"habit_reminder_service/internal/domain/reminder"
)

// Custom errors specific to the reminder repository
var ErrReminderNotFound = fmt.Errorf("reminder not found")
var ErrDuplicateReminder = fmt.Errorf("duplicate reminder (tracking_id, scheduled_time)")

// ErrStaleReminderStatus reports a conditional status update that matched no
// row: the reminder's status changed between the caller's read and the write.
var ErrStaleReminderStatus = fmt.Errorf("reminder status changed concurrently")

type SQLiteReminderRepository struct {
	db *sql.DB
}

func NewSQLiteReminderRepository(db *sql.DB) *SQLiteReminderRepository {
	return &SQLiteReminderRepository{db: db}
}

func (r *SQLiteReminderRepository) Create(ctx context.Context, rem *reminder.Reminder) error {
	now := time.Now().UTC()
	query := `INSERT INTO reminders (tracking_id, user_id, scheduled_time, status, value, last_notified_at, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, rem.TrackingID, rem.UserID, rem.ScheduledTime.UTC(), rem.Status, rem.Value, rem.LastNotifiedAt, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateReminder
		}
		return fmt.Errorf("error creating reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading new reminder id: %w", err)
	}
	rem.ID = id
	rem.CreatedAt = now
	rem.UpdatedAt = now
	return nil
}

func (r *SQLiteReminderRepository) BulkCreate(ctx context.Context, reminders []*reminder.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO reminders (tracking_id, user_id, scheduled_time, status, value, last_notified_at, created_at, updated_at)
                                         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for bulk create: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rem := range reminders {
		_, err := stmt.ExecContext(ctx, rem.TrackingID, rem.UserID, rem.ScheduledTime.UTC(), rem.Status, rem.Value, rem.LastNotifiedAt, now, now)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("error in bulk create (reminder for T:%d at %s): %w", rem.TrackingID, rem.ScheduledTime, ErrDuplicateReminder)
			}
			return fmt.Errorf("error executing statement for bulk create (reminder for T:%d at %s): %w", rem.TrackingID, rem.ScheduledTime, err)
		}
	}

	return txn.Commit()
}

const reminderColumns = `id, tracking_id, user_id, scheduled_time, status, value, last_notified_at, created_at, updated_at`

func scanReminder(row *sql.Row) (*reminder.Reminder, error) {
	rem := reminder.Reminder{}
	err := row.Scan(
		&rem.ID, &rem.TrackingID, &rem.UserID, &rem.ScheduledTime, &rem.Status,
		&rem.Value, &rem.LastNotifiedAt, &rem.CreatedAt, &rem.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *SQLiteReminderRepository) GetByID(ctx context.Context, id int64) (*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`
	rem, err := scanReminder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("error getting reminder by ID: %w", err)
	}
	return rem, nil
}

// Helper to scan multiple rows
func scanReminders(rows *sql.Rows) ([]*reminder.Reminder, error) {
	reminders := make([]*reminder.Reminder, 0)
	for rows.Next() {
		rem := reminder.Reminder{}
		if err := rows.Scan(
			&rem.ID, &rem.TrackingID, &rem.UserID, &rem.ScheduledTime, &rem.Status,
			&rem.Value, &rem.LastNotifiedAt, &rem.CreatedAt, &rem.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning reminder row: %w", err)
		}
		reminders = append(reminders, &rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}
	return reminders, nil
}

func (r *SQLiteReminderRepository) ListByUser(ctx context.Context, userID int64) ([]*reminder.Reminder, error) {
	// Pending first, then upcoming, answered last; newest schedule first inside
	// each group so the UI poll sees the most relevant rows at the top.
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE user_id = ?
               ORDER BY CASE status WHEN 'PENDING' THEN 0 WHEN 'UPCOMING' THEN 1 ELSE 2 END, scheduled_time DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying reminders by user: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *SQLiteReminderRepository) ListDueUpcoming(ctx context.Context, dueAtOrBefore time.Time) ([]*reminder.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders
               WHERE status = ? AND scheduled_time <= ?
               ORDER BY scheduled_time ASC` // Process older ones first
	rows, err := r.db.QueryContext(ctx, query, reminder.StatusUpcoming, dueAtOrBefore.UTC())
	if err != nil {
		return nil, fmt.Errorf("error querying due upcoming reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *SQLiteReminderRepository) Exists(ctx context.Context, trackingID int64, scheduledTime time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM reminders WHERE tracking_id = ? AND scheduled_time = ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, trackingID, scheduledTime.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking reminder existence: %w", err)
	}
	return count > 0, nil
}

// UpdateStatusFrom commits the status change only when the row still holds the
// status the caller read. Zero affected rows means either the reminder is gone
// or another writer got there first.
func (r *SQLiteReminderRepository) UpdateStatusFrom(ctx context.Context, id int64, from, to reminder.Status) error {
	query := `UPDATE reminders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("error updating reminder status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for status update: %w", err)
	}
	if affected == 0 {
		var count int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reminders WHERE id = ?`, id).Scan(&count); err != nil {
			return fmt.Errorf("error checking reminder after missed status update: %w", err)
		}
		if count == 0 {
			return ErrReminderNotFound
		}
		return ErrStaleReminderStatus
	}
	return nil
}

func (r *SQLiteReminderRepository) SetValue(ctx context.Context, id int64, value reminder.Value) error {
	query := `UPDATE reminders SET value = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(value), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error setting reminder value: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for value update: %w", err)
	}
	if affected == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *SQLiteReminderRepository) MarkNotified(ctx context.Context, id int64, notifiedAt time.Time) error {
	query := `UPDATE reminders SET last_notified_at = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, notifiedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error marking reminder notified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for notified update: %w", err)
	}
	if affected == 0 {
		return ErrReminderNotFound
	}
	return nil
}
