package scheduler

import (
	"context"
	"time"

	"habit_reminder_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler drives the periodic reminder jobs: materializing upcoming
// reminders from tracking schedules and promoting due ones.
type ReminderScheduler struct {
	cronEngine          *cron.Cron
	reminderService     *app.ReminderService
	logger              *logrus.Entry
	cronSpecMaterialize string
	cronSpecPromote     string
	materializeHorizon  time.Duration
}

func NewReminderScheduler(
	reminderService *app.ReminderService,
	logger *logrus.Entry,
	cronSpecMaterialize string, // e.g., "0 0 * * *" (midnight daily)
	cronSpecPromote string, // e.g., "* * * * *" (every minute)
	materializeHorizon time.Duration,
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:          cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reminderService:     reminderService,
		logger:              logger,
		cronSpecMaterialize: cronSpecMaterialize,
		cronSpecPromote:     cronSpecPromote,
		materializeHorizon:  materializeHorizon,
	}
}

func (s *ReminderScheduler) Start() {
	s.logger.Info("Starting reminder scheduler...")

	// Job for materializing upcoming reminders
	_, err := s.cronEngine.AddFunc(s.cronSpecMaterialize, func() {
		s.logger.Info("Cron job triggered for materializing upcoming reminders.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.reminderService.MaterializeUpcoming(ctx, time.Now(), s.materializeHorizon); err != nil {
			s.logger.WithError(err).Error("Error during reminder materialization")
		}
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add materialize cron job: %v", err)
	}

	// Job for promoting due reminders and sending notifications
	_, err = s.cronEngine.AddFunc(s.cronSpecPromote, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.reminderService.ProcessDueReminders(ctx, time.Now()); err != nil {
			s.logger.WithError(err).Error("Error during due reminder processing")
		}
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add promote cron job: %v", err)
	}

	// Materialize once at startup so a fresh deployment does not wait for the
	// next cron window.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.reminderService.MaterializeUpcoming(ctx, time.Now(), s.materializeHorizon); err != nil {
			s.logger.WithError(err).Error("Error during startup reminder materialization")
		}
	}()

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started with jobs.")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
