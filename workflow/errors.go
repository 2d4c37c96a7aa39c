// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotOpen       = errors.New("event is not open for voting")
	ErrAlreadyVoted       = errors.New("voter already submitted a ballot")
	ErrSubmitInFlight     = errors.New("a submission is already in progress")
	ErrNoSigningURL       = errors.New("no signing url stored for voter")
	ErrSignatureNotNeeded = errors.New("ballot does not need a signature")
	ErrResignDisabled     = errors.New("re-signing is disabled for this server")
)

// SubmitKind separates submissions the voter can fix from infrastructure
// failures.
type SubmitKind int

const (
	// Rejected submissions were refused on their content or timing.
	Rejected SubmitKind = iota
	// Failed submissions hit a storage or signing provider error.
	Failed
)

func (k SubmitKind) String() string {
	if k == Rejected {
		return "rejected"
	}
	return "failed"
}

// SubmitError carries the identifiers needed to route the voter to a
// failure view.
type SubmitError struct {
	EventID string
	VoterID string
	Kind    SubmitKind
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submission %s for voter %s in event %s: %v", e.Kind, e.VoterID, e.EventID, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
