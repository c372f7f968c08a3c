// internal/domain/reminder/repository.go
package reminder

import (
	"context"
	"time"
)

// Repository defines persistence operations for Reminder entities.
type Repository interface {
	Create(ctx context.Context, rem *Reminder) error
	BulkCreate(ctx context.Context, reminders []*Reminder) error // For materializing a scheduling horizon
	GetByID(ctx context.Context, id int64) (*Reminder, error)
	ListByUser(ctx context.Context, userID int64) ([]*Reminder, error)
	// ListDueUpcoming fetches UPCOMING reminders whose scheduled time has passed.
	ListDueUpcoming(ctx context.Context, dueAtOrBefore time.Time) ([]*Reminder, error)
	// Exists reports whether a reminder is already materialized for the
	// tracking at the given scheduled time.
	Exists(ctx context.Context, trackingID int64, scheduledTime time.Time) (bool, error)

	// UpdateStatusFrom commits a status change for the reminder with the given
	// id, conditioned on the previously read status. A write that matches no
	// row because the status moved underneath the caller reports
	// ErrStaleReminderStatus from the implementing package.
	UpdateStatusFrom(ctx context.Context, id int64, from, to Status) error
	// SetValue records the outcome tag of an answered reminder.
	SetValue(ctx context.Context, id int64, value Value) error
	// MarkNotified records when a notification for the reminder was sent.
	MarkNotified(ctx context.Context, id int64, notifiedAt time.Time) error
}
