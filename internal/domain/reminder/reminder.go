// internal/domain/reminder/reminder.go
package reminder

import (
	"database/sql"
	"time"
)

// Reminder is a scheduled notification record tied to a tracking/user pair.
// Corresponds to the 'reminders' table.
type Reminder struct {
	ID             int64
	TrackingID     int64 // Foreign Key to trackings.id
	UserID         int64 // Foreign Key to users.id
	ScheduledTime  time.Time
	Status         Status
	Value          sql.NullString // Outcome tag once answered ("Completed" / "Dismissed")
	LastNotifiedAt sql.NullTime   // When the last notification for this reminder was sent
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
