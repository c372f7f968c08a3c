package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"habit_reminder_service/internal/app"
	"habit_reminder_service/internal/domain/user"
	idb "habit_reminder_service/internal/infra/database"
)

type settingsPayload struct {
	EmailEnabled    bool   `json:"email_enabled"`
	TelegramEnabled bool   `json:"telegram_enabled"`
	QuietHoursStart string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   string `json:"quiet_hours_end,omitempty"`
}

func toSettingsPayload(s *user.NotificationSettings) settingsPayload {
	p := settingsPayload{
		EmailEnabled:    s.EmailEnabled,
		TelegramEnabled: s.TelegramEnabled,
	}
	if s.QuietHoursStart.Valid {
		p.QuietHoursStart = s.QuietHoursStart.String
	}
	if s.QuietHoursEnd.Valid {
		p.QuietHoursEnd = s.QuietHoursEnd.String
	}
	return p
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	settings, err := s.settings.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, idb.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.WithError(err).Error("Failed to get notification settings")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, toSettingsPayload(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := s.settings.Update(r.Context(), userID, req.EmailEnabled, req.TelegramEnabled, req.QuietHoursStart, req.QuietHoursEnd)
	if err != nil {
		switch {
		case errors.Is(err, idb.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, app.ErrTelegramNotLinked):
			respondError(w, http.StatusConflict, "link the telegram bot before enabling the channel")
		case errors.Is(err, app.ErrInvalidQuietHours):
			respondError(w, http.StatusBadRequest, "quiet hours must be a pair of HH:MM values")
		default:
			s.logger.WithError(err).Error("Failed to update notification settings")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, http.StatusOK, toSettingsPayload(settings))
}

func (s *Server) handleCreateLinkCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	code, err := s.settings.CreateTelegramLinkCode(r.Context(), userID)
	if err != nil {
		if errors.Is(err, idb.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.WithError(err).Error("Failed to create telegram link code")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"code": code})
}
