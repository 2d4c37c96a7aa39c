// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Event: title, credit budget, voting window and ordered options
  - Option: title with optional description and link, identified by index
  - VoterRecord: persisted allocation, signing hash and signature state

# Request Types

  - CreateEventRequest: event definition plus number of voters to issue
  - AdjustVoteRequest: index, increment
  - SignatureCallbackRequest: message, signature, publicKey

# Response Types

  - CreateEventResponse: event_id, admin_key, voter_ids
  - VoteSessionResponse: reconciled view of a voter session
  - BallotSnapshot: allocation, credits_remaining, expanded flags
  - SubmitVoteResponse: signing url
  - EventResults: counted votes per option
  - ErrorResponse: error, message

# Constants

Session views:

	ViewEditing, ViewSignatureRetry, ViewAwaitingSignature,
	ViewHistoric, ViewNotStarted, ViewEnded

Event phases:

	PhaseNotStarted = "not_started"
	PhaseOpen       = "open"
	PhaseEnded      = "ended"
*/
package models
