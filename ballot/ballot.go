// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"fmt"
	"slices"
	"sync"

	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/models"
)

type State int

const (
	Editing State = iota
	Submitting
	AwaitingSignature
	Done
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case AwaitingSignature:
		return "awaiting_signature"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the machine state. Mutating it has no effect on
// the machine.
type Snapshot struct {
	State            State
	Allocation       []int
	CreditsRemaining int
	Expanded         []bool
	ReadOnly         bool
}

// Model converts the snapshot to its JSON form.
func (s Snapshot) Model() models.BallotSnapshot {
	return models.BallotSnapshot{
		State:            s.State.String(),
		Allocation:       s.Allocation,
		CreditsRemaining: s.CreditsRemaining,
		Expanded:         s.Expanded,
		ReadOnly:         s.ReadOnly,
	}
}

type Machine struct {
	mu              sync.Mutex
	creditsPerVoter int
	allocation      []int
	remaining       int
	expanded        []bool
	state           State
	readOnly        bool
}

// New builds a machine from the voter's last submitted allocation. The
// record is copied; later votes never touch it.
func New(record models.VoterRecord, event models.Event) (*Machine, error) {
	allocation := slices.Clone(record.PerOptionVotes)
	if allocation == nil {
		allocation = []int{}
	}
	if err := ledger.Validate(event.CreditsPerVoter, len(event.Options), allocation); err != nil {
		return nil, fmt.Errorf("voter %s: %w", record.ID, err)
	}

	return &Machine{
		creditsPerVoter: event.CreditsPerVoter,
		allocation:      allocation,
		remaining:       ledger.Remaining(event.CreditsPerVoter, allocation),
		expanded:        make([]bool, len(allocation)),
		state:           Editing,
		readOnly:        ledger.TotalSpent(allocation) > 0,
	}, nil
}

// ApplyVote moves option index by one vote up (increment) or down.
func (m *Machine) ApplyVote(index int, increment bool) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Editing {
		return m.snapshot(), reject(index, ErrNotEditing)
	}
	if m.readOnly {
		return m.snapshot(), reject(index, ErrReadOnly)
	}
	if index < 0 || index >= len(m.allocation) {
		return m.snapshot(), reject(index, ErrInvalidIndex)
	}

	delta := ledger.DeltaOf(increment)
	if !ledger.CanAdjust(m.allocation[index], delta, m.remaining) {
		return m.snapshot(), reject(index, ErrInsufficientCredits)
	}

	next := slices.Clone(m.allocation)
	next[index] += int(delta)
	remaining := ledger.Remaining(m.creditsPerVoter, next)
	if remaining < 0 {
		return m.snapshot(), reject(index, ErrInsufficientCredits)
	}

	m.allocation = next
	m.remaining = remaining
	return m.snapshot(), nil
}

// Render returns the current allocation and remaining credits.
func (m *Machine) Render() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// CanAdjust reports whether ApplyVote(index, increment) would succeed.
// Views use it to enable or disable the +/- controls.
func (m *Machine) CanAdjust(index int, increment bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Editing || m.readOnly || index < 0 || index >= len(m.allocation) {
		return false
	}
	return ledger.CanAdjust(m.allocation[index], ledger.DeltaOf(increment), m.remaining)
}

// ToggleExpanded flips whether the option's description is shown.
func (m *Machine) ToggleExpanded(index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.expanded) {
		return false, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	next := slices.Clone(m.expanded)
	next[index] = !next[index]
	m.expanded = next
	return next[index], nil
}

// Unlock makes an already voted ballot editable again.
func (m *Machine) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Editing {
		return fmt.Errorf("%w: unlock from %s", ErrInvalidTransition, m.state)
	}
	m.readOnly = false
	return nil
}

// BeginSubmit freezes the ballot and returns the allocation to submit.
func (m *Machine) BeginSubmit() ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Editing {
		return nil, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, m.state)
	}
	if m.readOnly {
		return nil, ErrReadOnly
	}
	m.state = Submitting
	return slices.Clone(m.allocation), nil
}

// CompleteSubmit records that a signing URL was issued.
func (m *Machine) CompleteSubmit() error {
	return m.transition(Submitting, AwaitingSignature)
}

// AbortSubmit returns a failed submission to Editing with the allocation
// unchanged.
func (m *Machine) AbortSubmit() error {
	return m.transition(Submitting, Editing)
}

// HideForSigning leaves Editing for a signature retry without submitting.
func (m *Machine) HideForSigning() error {
	return m.transition(Editing, AwaitingSignature)
}

// Finish marks the ballot as counted. Any state but Submitting may finish.
func (m *Machine) Finish() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Submitting {
		return fmt.Errorf("%w: finish from %s", ErrInvalidTransition, m.state)
	}
	m.state = Done
	return nil
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) transition(from, to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != from {
		return fmt.Errorf("%w: %s to %s from %s", ErrInvalidTransition, from, to, m.state)
	}
	m.state = to
	return nil
}

// snapshot must be called with m.mu held.
func (m *Machine) snapshot() Snapshot {
	return Snapshot{
		State:            m.state,
		Allocation:       slices.Clone(m.allocation),
		CreditsRemaining: m.remaining,
		Expanded:         slices.Clone(m.expanded),
		ReadOnly:         m.readOnly,
	}
}
