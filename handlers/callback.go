// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/workflow"
)

// CallbackHandler receives signature confirmations from the signing
// provider.
type CallbackHandler struct {
	sessions *workflow.Registry
	verifier auth.Verifier
	metrics  *metrics.Metrics
}

func NewCallbackHandler(sessions *workflow.Registry, verifier auth.Verifier, m *metrics.Metrics) *CallbackHandler {
	return &CallbackHandler{sessions: sessions, verifier: verifier, metrics: m}
}

// RecordSignature handles POST /events/callback
func (h *CallbackHandler) RecordSignature(w http.ResponseWriter, r *http.Request) {
	if err := h.verifier.Verify(r.Header.Get("Authorization")); err != nil {
		h.metrics.Callback(metrics.OutcomeUnauthorized)
		slog.Warn("signature callback rejected", "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.SignatureCallbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.sessions.RecordSignature(r.Context(), req.Message, req.Signature, req.PublicKey)
	if errors.Is(err, db.ErrVoterNotFound) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid voter id")
		return
	}
	if err != nil {
		slog.Error("failed to record signature", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Successful update"})
}
