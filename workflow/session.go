// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/danielhkuo/quickly-vote/ballot"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/reconcile"
)

// State of the submission step within one session.
type State int

const (
	Idle State = iota
	Submitting
	SigningRequired
	SubmitRejected
	SubmitFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case SigningRequired:
		return "signing_required"
	case SubmitRejected:
		return "rejected"
	case SubmitFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type SignatureStatus int

const (
	NoSignatureNeeded SignatureStatus = iota
	AwaitingURL
	AwaitingUserSignature
	Confirmed
)

func (s SignatureStatus) String() string {
	switch s {
	case AwaitingURL:
		return models.SignatureAwaitingURL
	case AwaitingUserSignature:
		return models.SignatureAwaitingUser
	case Confirmed:
		return models.SignatureConfirmed
	default:
		return models.SignatureNotNeeded
	}
}

// Session is one voter's page session: the ballot being edited plus the
// progress of its submission. A confirmed signature is only observed by
// opening a new session.
type Session struct {
	svc     *Service
	machine *ballot.Machine
	voterID string
	event   models.Event

	mu             sync.Mutex
	state          State
	previous       []int
	alreadyVoted   bool
	needsSignature bool
	signed         bool
	unlocked       bool
	signingURL     string
	lastErr        error
}

// NewSession reconciles record into a fresh session.
func NewSession(svc *Service, record models.VoterRecord, event models.Event) (*Session, error) {
	machine, err := ballot.New(record, event)
	if err != nil {
		return nil, err
	}
	initial := reconcile.Reconcile(record, event, svc.now())

	s := &Session{
		svc:            svc,
		machine:        machine,
		voterID:        record.ID,
		event:          event,
		previous:       initial.Allocation,
		alreadyVoted:   initial.AlreadyVoted,
		needsSignature: initial.NeedsSignature,
		signed:         initial.AlreadyVoted && record.SignatureExists,
	}
	if initial.Phase == reconcile.Ended {
		if err := machine.Finish(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) VoterID() string {
	return s.voterID
}

func (s *Session) Event() models.Event {
	return s.event
}

// ApplyVote forwards to the ballot while the event is open.
func (s *Session) ApplyVote(index int, increment bool) (ballot.Snapshot, error) {
	if phase := s.phase(); phase != reconcile.Open {
		s.svc.metrics.Vote(metrics.OutcomeRejected)
		return s.machine.Render(), &ballot.RejectionError{Index: index, Reason: fmt.Errorf("%w: %s", ErrEventNotOpen, phase)}
	}
	snap, err := s.machine.ApplyVote(index, increment)
	if err != nil {
		s.svc.metrics.Vote(metrics.OutcomeRejected)
		return snap, err
	}
	s.svc.metrics.Vote(metrics.OutcomeAccepted)
	return snap, nil
}

func (s *Session) ToggleExpanded(index int) (bool, error) {
	return s.machine.ToggleExpanded(index)
}

// Unlock makes an already voted ballot editable, when re-signing is allowed.
func (s *Session) Unlock() error {
	if !s.svc.allowResign {
		return ErrResignDisabled
	}
	if phase := s.phase(); phase != reconcile.Open {
		return fmt.Errorf("%w: %s", ErrEventNotOpen, phase)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrSubmitInFlight
	}
	if err := s.machine.Unlock(); err != nil {
		return err
	}
	s.unlocked = true
	return nil
}

// Submit sends the ballot through the service. Only one submission may be
// in flight per session; a failed or rejected one leaves the ballot
// editable with its allocation unchanged.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return SubmitResult{}, &SubmitError{EventID: s.event.ID, VoterID: s.voterID, Kind: Rejected, Err: ErrSubmitInFlight}
	}
	allocation, err := s.machine.BeginSubmit()
	if err != nil {
		s.mu.Unlock()
		return SubmitResult{}, &SubmitError{EventID: s.event.ID, VoterID: s.voterID, Kind: Rejected, Err: err}
	}
	s.state = Submitting
	s.lastErr = nil
	s.mu.Unlock()

	result, err := s.svc.Submit(ctx, s.voterID, allocation)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if abortErr := s.machine.AbortSubmit(); abortErr != nil {
			return SubmitResult{}, errors.Join(err, abortErr)
		}
		s.state = SubmitFailed
		var se *SubmitError
		if errors.As(err, &se) && se.Kind == Rejected {
			s.state = SubmitRejected
		}
		s.lastErr = err
		return SubmitResult{}, err
	}

	if err := s.machine.CompleteSubmit(); err != nil {
		return SubmitResult{}, err
	}
	s.state = SigningRequired
	s.signingURL = result.SigningURL
	s.previous = allocation
	s.alreadyVoted = ledger.TotalSpent(allocation) > 0
	s.needsSignature = s.alreadyVoted
	s.signed = false
	s.unlocked = false
	return result, nil
}

// RetrySigning reuses the signing URL stored with the voter's last
// submission and hides the ballot.
func (s *Session) RetrySigning(ctx context.Context) (string, error) {
	if phase := s.phase(); phase != reconcile.Open {
		return "", fmt.Errorf("%w: %s", ErrEventNotOpen, phase)
	}
	record, _, err := s.svc.Load(ctx, s.event.ID, s.voterID)
	if err != nil {
		return "", err
	}
	url, err := s.svc.RetrySigning(record)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return "", ErrSubmitInFlight
	}
	if s.machine.State() == ballot.Editing {
		if err := s.machine.HideForSigning(); err != nil {
			return "", err
		}
	}
	s.state = SigningRequired
	s.signingURL = url
	return url, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the error of the last failed or rejected submission.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) SigningURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signingURL
}

func (s *Session) View() reconcile.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(s.phase())
}

func (s *Session) Signature() SignatureStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signatureLocked()
}

// Model renders the session for the voting endpoints.
func (s *Session) Model() models.VoteSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := s.phase()
	return models.VoteSessionResponse{
		VoterID:        s.voterID,
		Event:          s.event,
		View:           string(s.viewLocked(phase)),
		Phase:          string(phase),
		AlreadyVoted:   s.alreadyVoted,
		NeedsSignature: s.needsSignature,
		SigningURL:     s.signingURL,
		Signature:      s.signatureLocked().String(),
		Submission:     s.state.String(),
		Ballot:         s.machine.Render().Model(),
		Previous:       slices.Clone(s.previous),
	}
}

func (s *Session) phase() reconcile.Phase {
	return reconcile.PhaseAt(s.event, s.svc.now())
}

func (s *Session) viewLocked(phase reconcile.Phase) reconcile.View {
	if s.unlocked && phase == reconcile.Open && s.signingURL == "" {
		return reconcile.ViewEditing
	}
	return reconcile.SelectView(s.alreadyVoted, s.needsSignature, phase, s.signingURL != "")
}

func (s *Session) signatureLocked() SignatureStatus {
	switch {
	case s.signed:
		return Confirmed
	case s.state == Submitting:
		return AwaitingURL
	case s.signingURL != "":
		return AwaitingUserSignature
	case s.needsSignature:
		return AwaitingURL
	default:
		return NoSignatureNeeded
	}
}
