// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/reconcile"
	"github.com/danielhkuo/quickly-vote/signing"
)

// Store is the part of db.Store the workflow needs.
type Store interface {
	GetEvent(ctx context.Context, eventID string) (models.Event, error)
	FindVoter(ctx context.Context, eventID, voterID string) (models.VoterRecord, error)
	FindVoterByHash(ctx context.Context, hash string) (models.VoterRecord, error)
	UpdateVoter(ctx context.Context, voterID string, u models.VoterUpdate) error
}

type Options struct {
	// AllowResign lets an already voted ballot be submitted again.
	AllowResign bool
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type SubmitResult struct {
	SigningURL string
	Hash       string
}

type Service struct {
	store       Store
	signer      signing.Provider
	allowResign bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	mu         sync.Mutex
	submitting map[string]struct{}
}

func NewService(store Store, signer signing.Provider, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:       store,
		signer:      signer,
		allowResign: opts.AllowResign,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
		submitting:  make(map[string]struct{}),
	}
}

// Load returns the voter and its event. eventID may be empty.
func (s *Service) Load(ctx context.Context, eventID, voterID string) (models.VoterRecord, models.Event, error) {
	record, err := s.store.FindVoter(ctx, eventID, voterID)
	if err != nil {
		return models.VoterRecord{}, models.Event{}, err
	}
	event, err := s.store.GetEvent(ctx, record.EventID)
	if err != nil {
		return models.VoterRecord{}, models.Event{}, fmt.Errorf("voter %s: %w", voterID, err)
	}
	return record, event, nil
}

// Submit persists allocation as the voter's ballot and returns the URL at
// which the voter signs it. Nothing is written unless the signing provider
// issued a URL, and only while the stored ballot is still the one read at
// the start. One submission per voter runs at a time.
func (s *Service) Submit(ctx context.Context, voterID string, allocation []int) (SubmitResult, error) {
	if !s.claim(voterID) {
		return SubmitResult{}, s.fail("", voterID, Rejected, ErrSubmitInFlight)
	}
	defer s.release(voterID)

	record, event, err := s.Load(ctx, "", voterID)
	if err != nil {
		kind := Failed
		if errors.Is(err, db.ErrVoterNotFound) {
			kind = Rejected
		}
		return SubmitResult{}, s.fail(record.EventID, voterID, kind, err)
	}

	if phase := reconcile.PhaseAt(event, s.now()); phase != reconcile.Open {
		return SubmitResult{}, s.fail(event.ID, voterID, Rejected, fmt.Errorf("%w: %s", ErrEventNotOpen, phase))
	}
	if err := ledger.Validate(event.CreditsPerVoter, len(event.Options), allocation); err != nil {
		return SubmitResult{}, s.fail(event.ID, voterID, Rejected, err)
	}
	if ledger.TotalSpent(record.PerOptionVotes) > 0 && !s.allowResign {
		return SubmitResult{}, s.fail(event.ID, voterID, Rejected, ErrAlreadyVoted)
	}

	allocation = slices.Clone(allocation)
	hash := signing.Hash(voterID, event.ID, allocation)
	url, err := s.signer.RequestSignature(ctx, signing.Message(hash, event.ID, allocation))
	if err != nil {
		return SubmitResult{}, s.fail(event.ID, voterID, Failed, err)
	}

	votedAt := s.now().UTC()
	err = s.store.UpdateVoter(ctx, voterID, models.VoterUpdate{
		PerOptionVotes: allocation,
		Hash:           &hash,
		MudamosURL:     &url,
		VotedAt:        &votedAt,
		ClearSignature: true,
		ExpectHash:     &record.Hash,
	})
	if errors.Is(err, db.ErrVoterChanged) {
		return SubmitResult{}, s.fail(event.ID, voterID, Rejected, fmt.Errorf("%w: %w", ErrAlreadyVoted, err))
	}
	if err != nil {
		return SubmitResult{}, s.fail(event.ID, voterID, Failed, err)
	}

	s.metrics.Submission(metrics.OutcomeAccepted)
	s.logger.Info("ballot submitted", "event_id", event.ID, "voter_id", voterID, "spent", ledger.TotalSpent(allocation))
	return SubmitResult{SigningURL: url, Hash: hash}, nil
}

// RetrySigning returns the signing URL issued on the voter's last
// submission. The allocation is not sent again.
func (s *Service) RetrySigning(record models.VoterRecord) (string, error) {
	if ledger.TotalSpent(record.PerOptionVotes) == 0 || record.SignatureExists {
		return "", ErrSignatureNotNeeded
	}
	url := record.SigningURL()
	if url == "" {
		return "", ErrNoSigningURL
	}
	s.metrics.SigningRetry()
	return url, nil
}

// RecordSignature stores the provider's proof of signature on the voter
// whose hash leads message and returns that voter's id. It returns
// db.ErrVoterNotFound for an unknown hash without writing anything.
func (s *Service) RecordSignature(ctx context.Context, message, signature, publicKey string) (string, error) {
	hash := signing.HashFromMessage(message)
	record, err := s.store.FindVoterByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, db.ErrVoterNotFound) {
			s.metrics.Callback(metrics.OutcomeUnknownVoter)
			s.logger.Warn("signature for unknown voter", "hash", hash)
		}
		return "", err
	}

	err = s.store.UpdateVoter(ctx, record.ID, models.VoterUpdate{
		Signature: &signature,
		PublicKey: &publicKey,
	})
	if err != nil {
		return "", err
	}

	s.metrics.Callback(metrics.OutcomeSigned)
	s.logger.Info("signature recorded", "event_id", record.EventID, "voter_id", record.ID)
	return record.ID, nil
}

func (s *Service) claim(voterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.submitting[voterID]; busy {
		return false
	}
	s.submitting[voterID] = struct{}{}
	return true
}

func (s *Service) release(voterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submitting, voterID)
}

func (s *Service) fail(eventID, voterID string, kind SubmitKind, err error) error {
	outcome := metrics.OutcomeFailed
	if kind == Rejected {
		outcome = metrics.OutcomeRejected
		s.logger.Warn("submission rejected", "event_id", eventID, "voter_id", voterID, "error", err)
	} else {
		s.logger.Error("submission failed", "event_id", eventID, "voter_id", voterID, "error", err)
	}
	s.metrics.Submission(outcome)
	return &SubmitError{EventID: eventID, VoterID: voterID, Kind: kind, Err: err}
}
