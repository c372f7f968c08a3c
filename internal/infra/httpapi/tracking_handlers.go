package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"habit_reminder_service/internal/app"
	"habit_reminder_service/internal/domain/tracking"
	idb "habit_reminder_service/internal/infra/database"
)

type createTrackingRequest struct {
	Name         string `json:"name"`
	ScheduleSpec string `json:"schedule_spec"`
}

type trackingResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ScheduleSpec string    `json:"schedule_spec"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func toTrackingResponse(tr *tracking.Tracking) trackingResponse {
	return trackingResponse{
		ID:           tr.ID,
		Name:         tr.Name,
		ScheduleSpec: tr.ScheduleSpec,
		IsActive:     tr.IsActive,
		CreatedAt:    tr.CreatedAt,
	}
}

func (s *Server) handleCreateTracking(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req createTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	tr, err := s.trackings.Create(r.Context(), userID, req.Name, req.ScheduleSpec)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidScheduleSpec):
			respondError(w, http.StatusBadRequest, "invalid schedule expression")
		case errors.Is(err, app.ErrTrackingAlreadyExists):
			respondError(w, http.StatusConflict, "tracking with this name already exists")
		default:
			s.logger.WithError(err).Error("Failed to create tracking")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, http.StatusCreated, toTrackingResponse(tr))
}

func (s *Server) handleListTrackings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"
	trackings, err := s.trackings.List(r.Context(), userID, includeArchived)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list trackings")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]trackingResponse, len(trackings))
	for i, tr := range trackings {
		resp[i] = toTrackingResponse(tr)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"trackings": resp})
}

func (s *Server) handleArchiveTracking(w http.ResponseWriter, r *http.Request) {
	trackingID, ok := pathID(r, "trackingID")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid tracking id")
		return
	}

	tr, err := s.trackings.Archive(r.Context(), trackingID)
	if err != nil {
		switch {
		case errors.Is(err, idb.ErrTrackingNotFound):
			respondError(w, http.StatusNotFound, "tracking not found")
		case errors.Is(err, app.ErrTrackingAlreadyArchived):
			respondError(w, http.StatusConflict, "tracking is already archived")
		default:
			s.logger.WithError(err).Error("Failed to archive tracking")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, http.StatusOK, toTrackingResponse(tr))
}
