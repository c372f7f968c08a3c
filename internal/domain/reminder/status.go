// internal/domain/reminder/status.go
package reminder

import "fmt"

// Status represents the lifecycle state of a reminder.
type Status string

const (
	// StatusUpcoming is a materialized reminder that has not come due yet.
	StatusUpcoming Status = "UPCOMING"
	// StatusPending is a due reminder that still requires an answer.
	StatusPending Status = "PENDING"
	// StatusAnswered is a reminder the user has responded to.
	StatusAnswered Status = "ANSWERED"
)

// AllStatuses returns every valid lifecycle status.
func AllStatuses() []Status {
	return []Status{
		StatusUpcoming,
		StatusPending,
		StatusAnswered,
	}
}

// IsValid reports whether the status is a member of the enumeration.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusPending, StatusAnswered:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reminder status: %s", s)
	}
	return status, nil
}

// Value is the secondary outcome tag recorded when a reminder is answered.
// It is orthogonal to the lifecycle status.
type Value string

const (
	ValueCompleted Value = "Completed"
	ValueDismissed Value = "Dismissed"
)

// IsValid reports whether the value is a member of the enumeration.
func (v Value) IsValid() bool {
	switch v {
	case ValueCompleted, ValueDismissed:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	return string(v)
}
