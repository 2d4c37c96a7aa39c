// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"
	"fmt"
)

var (
	ErrVoteRejected        = errors.New("vote rejected")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidIndex        = errors.New("option index out of range")
	ErrNotEditing          = errors.New("ballot is not editable")
	ErrReadOnly            = errors.New("ballot already voted")
	ErrInvalidTransition   = errors.New("invalid ballot transition")
)

// RejectionError describes a vote the machine refused to apply.
type RejectionError struct {
	Index  int
	Reason error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("vote on option %d rejected: %v", e.Index, e.Reason)
}

func (e *RejectionError) Unwrap() []error {
	return []error{ErrVoteRejected, e.Reason}
}

func reject(index int, reason error) error {
	return &RejectionError{Index: index, Reason: reason}
}
