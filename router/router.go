// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/signing"
	"github.com/danielhkuo/quickly-vote/workflow"
)

// NewRouter wires the handlers to dbConn and signer. Counters are
// registered with registry and served on /metrics; a nil registry gets a
// private one.
func NewRouter(dbConn *sql.DB, cfg cliparse.Config, signer signing.Provider, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := metrics.New(registry)

	store := db.NewStore(dbConn, nil)
	svc := workflow.NewService(store, signer, workflow.Options{
		AllowResign: cfg.AllowResign,
		Metrics:     m,
	})

	// Initialize handlers
	sessions := workflow.NewRegistry(svc)
	eventHandler := handlers.NewEventHandler(store, cfg)
	votingHandler := handlers.NewVotingHandler(sessions)
	callbackHandler := handlers.NewCallbackHandler(sessions, auth.NewSharedSecret(cfg.AppSecret), m)
	resultsHandler := handlers.NewResultsHandler(store, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Event management (organizer)
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}/admin", middleware.WithLogging(eventHandler.GetEventAdmin))
	mux.HandleFunc("GET /events/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Signing provider callback
	mux.HandleFunc("POST /events/callback", middleware.WithLogging(callbackHandler.RecordSignature))

	// Voting session (voter id is the credential)
	mux.HandleFunc("GET /vote/{voter}", middleware.WithLogging(votingHandler.GetSession))
	mux.HandleFunc("GET /vote/{voter}/ballot", middleware.WithLogging(votingHandler.GetBallot))
	mux.HandleFunc("POST /vote/{voter}/adjust", middleware.WithLogging(votingHandler.AdjustVote))
	mux.HandleFunc("POST /vote/{voter}/toggle/{index}", middleware.WithLogging(votingHandler.ToggleOption))
	mux.HandleFunc("POST /vote/{voter}/unlock", middleware.WithLogging(votingHandler.Unlock))
	mux.HandleFunc("POST /vote/{voter}/submit", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("POST /vote/{voter}/retry-signing", middleware.WithLogging(votingHandler.RetrySigning))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-vote API v1"))
	})

	return mux
}
