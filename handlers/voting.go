// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-vote/ballot"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/workflow"
)

type VotingHandler struct {
	sessions *workflow.Registry
}

func NewVotingHandler(sessions *workflow.Registry) *VotingHandler {
	return &VotingHandler{sessions: sessions}
}

// GetSession handles GET /vote/{voter}
// Every load starts a fresh session from the stored voter record.
func (h *VotingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")
	session, err := h.sessions.Open(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session.Model())
}

// GetBallot handles GET /vote/{voter}/ballot
// Unlike GetSession it keeps the live session and its unsaved edits.
func (h *VotingHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")
	session, err := h.sessions.Get(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session.Model())
}

// AdjustVote handles POST /vote/{voter}/adjust
func (h *VotingHandler) AdjustVote(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")

	var req models.AdjustVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.sessions.Get(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}

	if _, err := session.ApplyVote(req.Index, req.Increment); err != nil {
		var rejection *ballot.RejectionError
		if errors.As(err, &rejection) {
			middleware.ErrorResponse(w, http.StatusConflict, rejection.Reason.Error())
			return
		}
		slog.Error("failed to apply vote", "voter_id", voterID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to apply vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, session.Model())
}

// ToggleOption handles POST /vote/{voter}/toggle/{index}
func (h *VotingHandler) ToggleOption(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	session, err := h.sessions.Get(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}

	if _, err := session.ToggleExpanded(index); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.JSONResponse(w, http.StatusOK, session.Model())
}

// Unlock handles POST /vote/{voter}/unlock
func (h *VotingHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")
	session, err := h.sessions.Get(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}

	err = session.Unlock()
	switch {
	case err == nil:
	case errors.Is(err, workflow.ErrResignDisabled):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
		return
	default:
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}

	slog.Info("ballot unlocked", "voter_id", voterID)
	middleware.JSONResponse(w, http.StatusOK, session.Model())
}

// SubmitVote handles POST /vote/{voter}/submit
// Returns the URL at which the voter signs the submitted ballot.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")
	session, err := h.sessions.Get(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}

	result, err := session.Submit(r.Context())
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		URL:  result.SigningURL,
		Hash: result.Hash,
	})
}

// RetrySigning handles POST /vote/{voter}/retry-signing
// Hands back the signing URL of the last submission without resubmitting.
func (h *VotingHandler) RetrySigning(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voter")
	session, err := h.sessions.Get(r.Context(), voterID)
	if err != nil {
		writeSessionError(w, voterID, err)
		return
	}

	url, err := session.RetrySigning(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, db.ErrVoterNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	case errors.Is(err, workflow.ErrSignatureNotNeeded),
		errors.Is(err, workflow.ErrNoSigningURL),
		errors.Is(err, workflow.ErrEventNotOpen),
		errors.Is(err, workflow.ErrSubmitInFlight):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	default:
		slog.Error("failed to retry signing", "voter_id", voterID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to retry signing")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{URL: url})
}

func writeSessionError(w http.ResponseWriter, voterID string, err error) {
	if errors.Is(err, db.ErrVoterNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	slog.Error("failed to load voting session", "voter_id", voterID, "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load ballot")
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var se *workflow.SubmitError
	switch {
	case errors.Is(err, db.ErrVoterNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
	case errors.As(err, &se) && se.Kind == workflow.Rejected:
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, se.Err.Error())
	case errors.As(err, &se):
		middleware.ErrorResponse(w, http.StatusBadGateway, "Submission failed, please try again")
	default:
		slog.Error("failed to submit ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
	}
}
