package tracking

import (
	"time"
)

// Tracking represents a habit the user wants to be reminded about. Reminders
// are materialized from its schedule.
type Tracking struct {
	ID           int64
	UserID       int64
	Name         string
	ScheduleSpec string // Standard 5-field cron expression
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
