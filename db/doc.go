// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db is the storage collaborator: driver selection, schema and the
event/voter Store.

# Opening

	conn, err := db.Open(db.TypeSQLite, "file:vote.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite is capped at one open connection. Queries use $N placeholders,
which both drivers accept.

# Schema Creation

CreateSchema is safe to call multiple times (IF NOT EXISTS everywhere).

  - event: title, credits_per_voter, voting window
  - event_option: options keyed by (event_id, option_index)
  - voter: vote_data (JSON array of per-option votes), hash, mudamos_url,
    signature, public_key, voted_at

	event 1──* event_option
	event 1──* voter

# Store

	FindVoter(ctx, eventID, voterID)   ErrVoterNotFound when missing
	FindVoterByHash(ctx, hash)         resolves signing callbacks
	UpdateVoter(ctx, voterID, update)  writes only the fields set

The stored vote_data is the authoritative last submitted allocation; its
length never changes after CreateEvent.
*/
package db
