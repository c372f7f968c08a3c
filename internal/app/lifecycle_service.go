package app

import (
	"context"
	"fmt"

	"habit_reminder_service/internal/domain/reminder"
)

// LifecycleService is the single entry point for changing a reminder's status.
// No other code path may write the status column. The service is stateless;
// each call is validated against the snapshot passed in, never against any
// cached state.
type LifecycleService struct {
	reminderRepo reminder.Repository
}

func NewLifecycleService(rr reminder.Repository) *LifecycleService {
	return &LifecycleService{reminderRepo: rr}
}

// Transition validates the requested status change and, when legal, issues
// exactly one conditional write to the repository. The caller's snapshot is
// not mutated; callers that need the updated row re-read it.
//
// Validation failures return a *reminder.TransitionError carrying the
// attempted pair. Repository failures propagate wrapped; they are not retried
// here, retry policy belongs to the caller. The repository write is
// conditioned on the status the caller read, so two racing transitions on the
// same reminder cannot both commit: the loser sees ErrStaleReminderStatus.
func (s *LifecycleService) Transition(ctx context.Context, rem *reminder.Reminder, target reminder.Status) error {
	if target == rem.Status {
		return &reminder.TransitionError{From: rem.Status, To: target}
	}
	if !reminder.IsLegalTransition(rem.Status, target) {
		return &reminder.TransitionError{From: rem.Status, To: target}
	}

	if err := s.reminderRepo.UpdateStatusFrom(ctx, rem.ID, rem.Status, target); err != nil {
		return fmt.Errorf("failed to commit transition %s -> %s for reminder %d: %w", rem.Status, target, rem.ID, err)
	}
	return nil
}
