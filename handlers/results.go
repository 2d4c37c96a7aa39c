// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/reconcile"
)

type ResultsHandler struct {
	store *db.Store
	cfg   cliparse.Config
	now   func() time.Time
}

func NewResultsHandler(store *db.Store, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{store: store, cfg: cfg, now: time.Now}
}

// GetResults handles GET /events/{id}/results
// Results are sealed until the voting window ends unless the organizer's
// X-Admin-Key is presented.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
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

	if reconcile.PhaseAt(ev, h.now()) != reconcile.Ended {
		adminKey := r.Header.Get("X-Admin-Key")
		if adminKey == "" {
			middleware.ErrorResponse(w, http.StatusForbidden, "Results are sealed until voting ends")
			return
		}
		if err := auth.ValidateAdminKey(eventID, adminKey, h.cfg.AdminKeySalt); err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
	}

	voters, err := h.store.ListVoters(r.Context(), eventID)
	if err != nil {
		slog.Error("failed to query voters", "event_id", eventID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, TallyResults(ev, voters))
}

// TallyResults sums votes and credits per option over signed ballots.
// Ballots still waiting for a signature are counted as voted only.
func TallyResults(ev models.Event, voters []models.VoterRecord) models.EventResults {
	res := models.EventResults{
		EventID:         ev.ID,
		CreditsPerVoter: ev.CreditsPerVoter,
		Voters:          len(voters),
		Options:         make([]models.OptionResult, len(ev.Options)),
	}
	for i, opt := range ev.Options {
		res.Options[i] = models.OptionResult{Index: i, Title: opt.Title}
	}

	for _, v := range voters {
		if ledger.TotalSpent(v.PerOptionVotes) == 0 {
			continue
		}
		res.Voted++
		if !v.SignatureExists {
			continue
		}
		if len(v.PerOptionVotes) != len(ev.Options) {
			slog.Warn("skipping ballot with wrong length", "event_id", ev.ID, "voter_id", v.ID)
			continue
		}
		res.Signed++
		for i, n := range v.PerOptionVotes {
			res.Options[i].Votes += n
			res.Options[i].Credits += ledger.Cost(n)
		}
	}
	return res
}
