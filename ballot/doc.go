// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot holds a voter's in-progress allocation.

A Machine is created from the persisted voter record and event:

	m, err := ballot.New(record, event)

# States

	Editing → Submitting → AwaitingSignature → Done
	             ↓
	          Editing (submission failed)

Only Editing accepts votes. A record that already carries votes starts
read-only; Unlock makes it editable again when the organizer allows
re-signing.

# Votes

	snap, err := m.ApplyVote(index, true)

Every accepted vote replaces the allocation with a new slice and recomputes
the remaining credits over the whole allocation. Rejected votes leave the
machine unchanged and return a *RejectionError that matches ErrVoteRejected
plus the specific reason (ErrInsufficientCredits, ErrInvalidIndex,
ErrNotEditing, ErrReadOnly).

A Machine is safe for concurrent use; every operation holds its lock for
the whole read-check-write sequence.
*/
package ballot
