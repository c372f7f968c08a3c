package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"habit_reminder_service/internal/app"
	"habit_reminder_service/internal/domain/reminder"
	idb "habit_reminder_service/internal/infra/database"
)

type answerRequest struct {
	Value string `json:"value"`
}

type reminderResponse struct {
	ID             int64      `json:"id"`
	TrackingID     int64      `json:"tracking_id"`
	ScheduledTime  time.Time  `json:"scheduled_time"`
	Status         string     `json:"status"`
	Value          *string    `json:"value,omitempty"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
}

func toReminderResponse(rem *reminder.Reminder) reminderResponse {
	resp := reminderResponse{
		ID:            rem.ID,
		TrackingID:    rem.TrackingID,
		ScheduledTime: rem.ScheduledTime,
		Status:        rem.Status.String(),
	}
	if rem.Value.Valid {
		resp.Value = &rem.Value.String
	}
	if rem.LastNotifiedAt.Valid {
		resp.LastNotifiedAt = &rem.LastNotifiedAt.Time
	}
	return resp
}

// handleAnswerReminder records the user's answer to a pending reminder.
// Transition rejections (already answered, not yet due, lost race) map to
// 409; the caller re-reads and retries with a fresh snapshot if it wants.
func (s *Server) handleAnswerReminder(w http.ResponseWriter, r *http.Request) {
	reminderID, ok := pathID(r, "reminderID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.reminders.Answer(r.Context(), reminderID, reminder.Value(req.Value))
	if err != nil {
		var te *reminder.TransitionError
		switch {
		case errors.Is(err, app.ErrInvalidAnswerValue):
			respondError(w, http.StatusBadRequest, "value must be Completed or Dismissed")
		case errors.Is(err, idb.ErrReminderNotFound):
			respondError(w, http.StatusNotFound, "reminder not found")
		case errors.As(err, &te):
			respondError(w, http.StatusConflict, te.Error())
		case errors.Is(err, idb.ErrStaleReminderStatus):
			respondError(w, http.StatusConflict, "reminder status changed, reload and retry")
		default:
			s.logger.WithError(err).Error("Failed to answer reminder")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	reminders, err := s.reminders.ListForUser(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reminders")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]reminderResponse, len(reminders))
	for i, rem := range reminders {
		resp[i] = toReminderResponse(rem)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"reminders": resp})
}
