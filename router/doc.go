// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewRouter builds the store, submission workflow and handlers on top of a
database connection and signing provider, and returns the mux:

	mux := router.NewRouter(db, cfg, signer, prometheus.NewRegistry())

# Endpoints

Operations:

	GET /health
	GET /metrics   - Prometheus exposition of the given registry

Events (organizer, X-Admin-Key):

	POST /events              - Create event and voter ids
	GET  /events/{id}/admin   - Participation counts
	GET  /events/{id}/results - Tally (public once voting ended)

Signing provider:

	POST /events/callback     - Record a signature (Authorization: Bearer)

Voting (voter id in the path):

	GET  /vote/{voter}                - Load ballot, fresh session
	GET  /vote/{voter}/ballot         - Live session
	POST /vote/{voter}/adjust         - One vote up or down
	POST /vote/{voter}/toggle/{index} - Show or hide an option description
	POST /vote/{voter}/unlock         - Edit an already voted ballot
	POST /vote/{voter}/submit         - Submit, returns the signing url
	POST /vote/{voter}/retry-signing  - Signing url of the last submission

Every API route is wrapped in middleware.WithLogging.
*/
package router
