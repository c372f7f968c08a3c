package app

import (
	"context"
	"fmt"

	"habit_reminder_service/internal/domain/tracking"
	idb "habit_reminder_service/internal/infra/database"

	"github.com/robfig/cron/v3"
)

// Custom application-level errors for the tracking service
var ErrTrackingAlreadyExists = fmt.Errorf("tracking with this name already exists for the user")
var ErrTrackingAlreadyArchived = fmt.Errorf("tracking is already archived")
var ErrInvalidScheduleSpec = fmt.Errorf("invalid tracking schedule expression")

type TrackingService struct {
	trackingRepo tracking.Repository
}

func NewTrackingService(tr tracking.Repository) *TrackingService {
	return &TrackingService{trackingRepo: tr}
}

// Create handles the business logic for adding a new tracking. The schedule
// is validated up front so the materialize job never meets an unparsable spec.
func (s *TrackingService) Create(ctx context.Context, userID int64, name, scheduleSpec string) (*tracking.Tracking, error) {
	if _, err := cron.ParseStandard(scheduleSpec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheduleSpec, err)
	}

	// Check if a tracking with this name already exists for the user
	_, err := s.trackingRepo.GetByUserAndName(ctx, userID, name)
	if err == nil { // Tracking found, so already exists
		return nil, ErrTrackingAlreadyExists
	}
	if err != idb.ErrTrackingNotFound { // Another error occurred during lookup
		return nil, fmt.Errorf("failed to check existing tracking: %w", err)
	}

	newTracking := &tracking.Tracking{
		UserID:       userID,
		Name:         name,
		ScheduleSpec: scheduleSpec,
		IsActive:     true, // New trackings are active by default
	}

	err = s.trackingRepo.Create(ctx, newTracking)
	if err != nil {
		if err == idb.ErrDuplicateTracking {
			return nil, ErrTrackingAlreadyExists
		}
		return nil, fmt.Errorf("failed to create tracking in repository: %w", err)
	}

	return newTracking, nil
}

// Archive deactivates a tracking so no further reminders are materialized for
// it. Existing reminder rows stay in place until the tracking is deleted.
func (s *TrackingService) Archive(ctx context.Context, trackingID int64) (*tracking.Tracking, error) {
	target, err := s.trackingRepo.GetByID(ctx, trackingID)
	if err != nil {
		if err == idb.ErrTrackingNotFound {
			return nil, idb.ErrTrackingNotFound // Propagate specific error
		}
		return nil, fmt.Errorf("failed to get tracking for archival: %w", err)
	}

	if !target.IsActive {
		return target, ErrTrackingAlreadyArchived
	}

	target.IsActive = false
	if err := s.trackingRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update tracking to archived in repository: %w", err)
	}

	return target, nil
}

// List returns the user's trackings, active only by default.
func (s *TrackingService) List(ctx context.Context, userID int64, includeArchived bool) ([]*tracking.Tracking, error) {
	return s.trackingRepo.ListByUser(ctx, userID, includeArchived)
}
