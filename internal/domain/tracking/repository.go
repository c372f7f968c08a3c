package tracking

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Tracking entities.
type Repository interface {
	Create(ctx context.Context, tr *Tracking) error
	GetByID(ctx context.Context, id int64) (*Tracking, error)
	GetByUserAndName(ctx context.Context, userID int64, name string) (*Tracking, error)
	Update(ctx context.Context, tr *Tracking) error // Handles updates to Name, ScheduleSpec, IsActive
	ListActive(ctx context.Context) ([]*Tracking, error)
	ListByUser(ctx context.Context, userID int64, includeArchived bool) ([]*Tracking, error)
}
