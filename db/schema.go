// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Works on both PostgreSQL and SQLite.
const schema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    credits_per_voter INTEGER NOT NULL CHECK (credits_per_voter >= 0),
    start_event_date TIMESTAMP NOT NULL,
    end_event_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Options, ordered by option_index
CREATE TABLE IF NOT EXISTS event_option (
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    option_index INTEGER NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (event_id, option_index)
);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    vote_data TEXT NOT NULL,
    hash TEXT UNIQUE,
    mudamos_url TEXT,
    signature TEXT,
    public_key TEXT,
    voted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voter_event_id ON voter(event_id);
`
