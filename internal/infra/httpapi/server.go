// Package httpapi exposes the service's REST surface: answering reminders,
// notification-channel settings and profile picture upload. Authentication is
// handled upstream; routes identify the user by path id.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"habit_reminder_service/internal/domain/reminder"
	"habit_reminder_service/internal/domain/tracking"
	"habit_reminder_service/internal/domain/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ReminderAPI is the slice of the reminder service the HTTP layer needs.
type ReminderAPI interface {
	Answer(ctx context.Context, reminderID int64, value reminder.Value) error
	ListForUser(ctx context.Context, userID int64) ([]*reminder.Reminder, error)
}

// SettingsAPI manages per-user notification channel configuration.
type SettingsAPI interface {
	Get(ctx context.Context, userID int64) (*user.NotificationSettings, error)
	Update(ctx context.Context, userID int64, emailEnabled, telegramEnabled bool, quietHoursStart, quietHoursEnd string) (*user.NotificationSettings, error)
	CreateTelegramLinkCode(ctx context.Context, userID int64) (string, error)
}

// ProfileAPI stores profile pictures.
type ProfileAPI interface {
	SavePicture(ctx context.Context, userID int64, ext string, content io.Reader) (string, error)
}

// TrackingAPI manages the user's trackings.
type TrackingAPI interface {
	Create(ctx context.Context, userID int64, name, scheduleSpec string) (*tracking.Tracking, error)
	Archive(ctx context.Context, trackingID int64) (*tracking.Tracking, error)
	List(ctx context.Context, userID int64, includeArchived bool) ([]*tracking.Tracking, error)
}

type Server struct {
	router         *chi.Mux
	reminders      ReminderAPI
	settings       SettingsAPI
	profiles       ProfileAPI
	trackings      TrackingAPI
	uploadMaxBytes int64
	logger         *logrus.Entry
}

func NewServer(
	reminders ReminderAPI,
	settings SettingsAPI,
	profiles ProfileAPI,
	trackings TrackingAPI,
	rateLimit RateLimitConfig,
	uploadMaxBytes int64,
	logger *logrus.Entry,
) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		reminders:      reminders,
		settings:       settings,
		profiles:       profiles,
		trackings:      trackings,
		uploadMaxBytes: uploadMaxBytes,
		logger:         logger,
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)

	limited := rateLimit.Middleware()

	r.Route("/api", func(r chi.Router) {
		r.With(limited).Post("/reminders/{reminderID}/answer", s.handleAnswerReminder)
		r.Get("/users/{userID}/reminders", s.handleListReminders)

		r.Get("/users/{userID}/notification-settings", s.handleGetSettings)
		r.Put("/users/{userID}/notification-settings", s.handleUpdateSettings)
		r.Post("/users/{userID}/telegram-link-code", s.handleCreateLinkCode)

		r.With(limited).Post("/users/{userID}/profile-picture", s.handleUploadProfilePicture)

		r.Post("/users/{userID}/trackings", s.handleCreateTracking)
		r.Get("/users/{userID}/trackings", s.handleListTrackings)
		r.Post("/trackings/{trackingID}/archive", s.handleArchiveTracking)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}).Info("access")
		}()

		next.ServeHTTP(ww, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
