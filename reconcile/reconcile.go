// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"slices"
	"time"

	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/models"
)

type Phase string

const (
	NotStarted Phase = models.PhaseNotStarted
	Open       Phase = models.PhaseOpen
	Ended      Phase = models.PhaseEnded
)

type View string

const (
	ViewEditing           View = models.ViewEditing
	ViewSignatureRetry    View = models.ViewSignatureRetry
	ViewAwaitingSignature View = models.ViewAwaitingSignature
	ViewHistoric          View = models.ViewHistoric
	ViewNotStarted        View = models.ViewNotStarted
	ViewEnded             View = models.ViewEnded
)

// InitialUIState is everything a fresh session needs from the stored record.
type InitialUIState struct {
	AlreadyVoted     bool
	NeedsSignature   bool
	Phase            Phase
	View             View
	Allocation       []int
	CreditsRemaining int
	// A signing URL was issued on an earlier submission
	HasStoredSigningURL bool
}

// PhaseAt places now relative to the event's voting window. Both ends of
// the window belong to Open.
func PhaseAt(event models.Event, now time.Time) Phase {
	if now.After(event.EndDate) {
		return Ended
	}
	if now.Before(event.StartDate) {
		return NotStarted
	}
	return Open
}

// Reconcile computes the initial state for a session started at now. No
// signing URL is held locally when a session starts.
func Reconcile(record models.VoterRecord, event models.Event, now time.Time) InitialUIState {
	alreadyVoted := ledger.TotalSpent(record.PerOptionVotes) > 0
	needsSignature := alreadyVoted && !record.SignatureExists
	phase := PhaseAt(event, now)

	return InitialUIState{
		AlreadyVoted:        alreadyVoted,
		NeedsSignature:      needsSignature,
		Phase:               phase,
		View:                SelectView(alreadyVoted, needsSignature, phase, false),
		Allocation:          slices.Clone(record.PerOptionVotes),
		CreditsRemaining:    ledger.Remaining(event.CreditsPerVoter, record.PerOptionVotes),
		HasStoredSigningURL: record.SigningURL() != "",
	}
}

func SelectView(alreadyVoted, needsSignature bool, phase Phase, signingURLPresent bool) View {
	switch {
	case phase == Ended:
		return ViewEnded
	case phase == NotStarted:
		return ViewNotStarted
	case signingURLPresent && (!alreadyVoted || needsSignature):
		return ViewAwaitingSignature
	case needsSignature:
		return ViewSignatureRetry
	case alreadyVoted:
		return ViewHistoric
	default:
		return ViewEditing
	}
}
