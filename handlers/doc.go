// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

  - EventHandler: event creation and the organizer view
  - VotingHandler: a voter's ballot session, from load to submission
  - CallbackHandler: signature confirmations from the signing provider
  - ResultsHandler: quadratic tallies over signed ballots

# Organizer

	POST /events            → CreateEvent (returns admin_key and voter ids)
	GET  /events/{id}/admin → GetEventAdmin (X-Admin-Key)

# Voting Session

The voter id is the voter's credential. Loading the page starts a fresh
session from the stored record; the other routes act on the live one.

	GET  /vote/{voter}                → GetSession
	GET  /vote/{voter}/ballot         → GetBallot
	POST /vote/{voter}/adjust         → AdjustVote {index, increment}
	POST /vote/{voter}/toggle/{index} → ToggleOption
	POST /vote/{voter}/unlock         → Unlock (only with -allow-resign)
	POST /vote/{voter}/submit         → SubmitVote (returns signing url)
	POST /vote/{voter}/retry-signing  → RetrySigning

Rejected votes answer 409 and leave the ballot unchanged. Submissions
answer 422 when the ballot itself is refused and 502 when storage or the
signing provider failed.

# Signing Callback

	POST /events/callback

Authenticated with the shared APP_SECRET before anything is read from
storage: 401 "Unauthorized", 400 "Invalid voter id" for an unknown hash,
200 "Successful update" once signature and public key are stored.

# Results

	GET /events/{id}/results

Sealed until the voting window ends unless X-Admin-Key is presented.
*/
package handlers
