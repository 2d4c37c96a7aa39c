// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
)

// MaxVotersPerEvent bounds num_voters on event creation
const MaxVotersPerEvent = 10000

type EventHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewEventHandler(store *db.Store, cfg cliparse.Config) *EventHandler {
	return &EventHandler{store: store, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := validateCreateEvent(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	eventID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate event ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	ev := models.Event{
		ID:              eventID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		CreditsPerVoter: req.CreditsPerVoter,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Options:         req.Options,
	}

	voterIDs, err := h.store.CreateEvent(r.Context(), ev, req.NumVoters)
	if err != nil {
		slog.Error("failed to create event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", eventID, "options", len(ev.Options), "voters", len(voterIDs))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID:  eventID,
		AdminKey: auth.GenerateAdminKey(eventID, h.cfg.AdminKeySalt),
		VoterIDs: voterIDs,
	})
}

func validateCreateEvent(req models.CreateEventRequest) string {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return "title is required"
	case req.CreditsPerVoter < 0:
		return "credits_per_voter must not be negative"
	case len(req.Options) == 0:
		return "at least one option is required"
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return "start_event_date and end_event_date are required"
	case !req.EndDate.After(req.StartDate):
		return "end_event_date must be after start_event_date"
	case req.NumVoters < 1 || req.NumVoters > MaxVotersPerEvent:
		return fmt.Sprintf("num_voters must be between 1 and %d", MaxVotersPerEvent)
	}
	for i, opt := range req.Options {
		if strings.TrimSpace(opt.Title) == "" {
			return fmt.Sprintf("option %d needs a title", i)
		}
	}
	return ""
}

// GetEventAdmin handles GET /events/{id}/admin
// Returns the event with voter participation counts
func (h *EventHandler) GetEventAdmin(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(eventID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	ev, err := h.store.GetEvent(r.Context(), eventID)
	if errors.Is(err, db.ErrEventNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to query event", "event_id", eventID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voters, err := h.store.ListVoters(r.Context(), eventID)
	if err != nil {
		slog.Error("failed to query voters", "event_id", eventID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.EventAdminResponse{Event: ev, Voters: len(voters)}
	for _, v := range voters {
		if ledger.TotalSpent(v.PerOptionVotes) == 0 {
			continue
		}
		resp.Voted++
		if v.SignatureExists {
			resp.Signed++
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
