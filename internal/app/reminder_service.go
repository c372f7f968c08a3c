// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit_reminder_service/internal/domain/notify"
	"habit_reminder_service/internal/domain/reminder"
	"habit_reminder_service/internal/domain/tracking"
	"habit_reminder_service/internal/domain/user"
	idb "habit_reminder_service/internal/infra/database" // For repository sentinel errors

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ErrInvalidAnswerValue reports a reminder answer with an outcome tag outside
// the enumeration.
var ErrInvalidAnswerValue = fmt.Errorf("invalid answer value")

// ReminderService orchestrates the reminder workflow: materializing upcoming
// reminders from tracking schedules, promoting due ones, dispatching
// notifications over the user's enabled channels, and recording answers. All
// status writes go through the LifecycleService.
type ReminderService struct {
	reminderRepo reminder.Repository
	trackingRepo tracking.Repository
	userRepo     user.Repository
	lifecycle    *LifecycleService
	channels     []notify.Channel
	logger       *logrus.Entry
}

func NewReminderService(
	rr reminder.Repository,
	tr tracking.Repository,
	ur user.Repository,
	lifecycle *LifecycleService,
	channels []notify.Channel,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		reminderRepo: rr,
		trackingRepo: tr,
		userRepo:     ur,
		lifecycle:    lifecycle,
		channels:     channels,
		logger:       logger,
	}
}

// Answer records the user's response to a pending reminder: the lifecycle
// transition to ANSWERED first, then the outcome tag. A failed transition
// leaves the row untouched.
func (s *ReminderService) Answer(ctx context.Context, reminderID int64, value reminder.Value) error {
	if !value.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAnswerValue, value)
	}

	rem, err := s.reminderRepo.GetByID(ctx, reminderID)
	if err != nil {
		return err
	}

	if err := s.lifecycle.Transition(ctx, rem, reminder.StatusAnswered); err != nil {
		return err
	}

	if err := s.reminderRepo.SetValue(ctx, reminderID, value); err != nil {
		return fmt.Errorf("failed to record answer value for reminder %d: %w", reminderID, err)
	}

	s.logger.WithFields(logrus.Fields{"reminder_id": reminderID, "value": value}).Info("Reminder answered")
	return nil
}

// ListForUser returns the user's reminders, pending first, for the UI poll.
func (s *ReminderService) ListForUser(ctx context.Context, userID int64) ([]*reminder.Reminder, error) {
	return s.reminderRepo.ListByUser(ctx, userID)
}

// MaterializeUpcoming creates UPCOMING reminders for every active tracking
// whose schedule fires between now and the horizon. Already materialized
// occurrences are skipped, so the job is safe to re-run.
func (s *ReminderService) MaterializeUpcoming(ctx context.Context, now time.Time, horizon time.Duration) error {
	activeTrackings, err := s.trackingRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active trackings: %w", err)
	}
	if len(activeTrackings) == 0 {
		s.logger.Info("No active trackings found. Nothing to materialize.")
		return nil
	}

	until := now.Add(horizon)
	var toCreate []*reminder.Reminder
	for _, tr := range activeTrackings {
		schedule, err := cron.ParseStandard(tr.ScheduleSpec)
		if err != nil {
			// Validated at creation time; a bad spec here means the row was
			// edited out of band. Log and keep going with the others.
			s.logger.WithError(err).WithField("tracking_id", tr.ID).Error("Skipping tracking with unparsable schedule")
			continue
		}

		for next := schedule.Next(now); !next.After(until); next = schedule.Next(next) {
			exists, err := s.reminderRepo.Exists(ctx, tr.ID, next)
			if err != nil {
				return fmt.Errorf("failed to check existing reminder for tracking %d: %w", tr.ID, err)
			}
			if exists {
				continue
			}
			toCreate = append(toCreate, &reminder.Reminder{
				TrackingID:    tr.ID,
				UserID:        tr.UserID,
				ScheduledTime: next,
				Status:        reminder.StatusUpcoming,
			})
		}
	}

	if len(toCreate) == 0 {
		return nil
	}
	if err := s.reminderRepo.BulkCreate(ctx, toCreate); err != nil {
		return fmt.Errorf("failed to bulk create upcoming reminders: %w", err)
	}
	s.logger.WithField("count", len(toCreate)).Info("Materialized upcoming reminders")
	return nil
}

// ProcessDueReminders promotes due UPCOMING reminders to PENDING and notifies
// their owners. A reminder another process already promoted is skipped
// silently; per-reminder failures are logged and do not stop the batch.
func (s *ReminderService) ProcessDueReminders(ctx context.Context, now time.Time) error {
	due, err := s.reminderRepo.ListDueUpcoming(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, rem := range due {
		logCtx := s.logger.WithField("reminder_id", rem.ID)

		if err := s.lifecycle.Transition(ctx, rem, reminder.StatusPending); err != nil {
			if errors.Is(err, idb.ErrStaleReminderStatus) {
				logCtx.Info("Reminder already promoted by another process. Skipping.")
				continue
			}
			logCtx.WithError(err).Error("Failed to promote due reminder")
			continue
		}

		if err := s.dispatch(ctx, rem, now); err != nil {
			logCtx.WithError(err).Error("Failed to dispatch reminder notification")
		}
	}
	return nil
}

// dispatch fans the reminder out to every channel the user has enabled.
// Per-channel failures are logged; one broken transport must not silence the
// others.
func (s *ReminderService) dispatch(ctx context.Context, rem *reminder.Reminder, now time.Time) error {
	owner, err := s.userRepo.GetByID(ctx, rem.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user %d: %w", rem.UserID, err)
	}

	settings, err := s.userRepo.GetSettings(ctx, rem.UserID)
	if err != nil {
		if err != idb.ErrSettingsNotFound {
			return fmt.Errorf("failed to get notification settings for user %d: %w", rem.UserID, err)
		}
		settings = defaultSettings(rem.UserID)
	}

	if settings.InQuietHours(now) {
		// The reminder is already PENDING and visible in the app; only the
		// push over external channels is suppressed.
		s.logger.WithField("reminder_id", rem.ID).Info("Skipping notification during quiet hours")
		return nil
	}

	tr, err := s.trackingRepo.GetByID(ctx, rem.TrackingID)
	if err != nil {
		return fmt.Errorf("failed to get tracking %d: %w", rem.TrackingID, err)
	}

	text := fmt.Sprintf("Hi %s! Time for %q. Did you do it?", owner.Name, tr.Name)

	sent := false
	for _, ch := range s.channels {
		if !settings.EnabledFor(ch.Name()) {
			continue
		}
		if err := ch.Send(ctx, owner, rem, text); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"reminder_id": rem.ID,
				"channel":     ch.Name(),
			}).Error("Channel send failed")
			continue
		}
		sent = true
	}

	if sent {
		if err := s.reminderRepo.MarkNotified(ctx, rem.ID, now); err != nil {
			return fmt.Errorf("failed to mark reminder %d notified: %w", rem.ID, err)
		}
	}
	return nil
}

func defaultSettings(userID int64) *user.NotificationSettings {
	return &user.NotificationSettings{
		UserID:          userID,
		EmailEnabled:    true,
		TelegramEnabled: false,
	}
}
