// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-vote/reconcile"
)

// sweepInterval bounds how often Open scans for sessions of ended events.
const sweepInterval = time.Minute

// Registry holds the live session of each voter.
type Registry struct {
	svc *Service

	mu        sync.Mutex
	sessions  map[string]*Session
	lastSweep time.Time
}

func NewRegistry(svc *Service) *Registry {
	return &Registry{svc: svc, sessions: make(map[string]*Session)}
}

// Open starts a fresh session from the stored record, replacing any
// previous one. A session with a submission in flight is kept. Sessions of
// ended events are read-only and are not retained.
func (r *Registry) Open(ctx context.Context, voterID string) (*Session, error) {
	r.mu.Lock()
	if existing, ok := r.sessions[voterID]; ok && existing.State() == Submitting {
		r.mu.Unlock()
		return existing, nil
	}
	r.mu.Unlock()

	record, event, err := r.svc.Load(ctx, "", voterID)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(r.svc, record, event)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[voterID]; ok && existing.State() == Submitting {
		return existing, nil
	}
	r.sweepLocked()
	if session.phase() == reconcile.Ended {
		delete(r.sessions, voterID)
		return session, nil
	}
	r.sessions[voterID] = session
	return session, nil
}

// sweepLocked drops idle sessions whose event has ended.
func (r *Registry) sweepLocked() {
	now := r.svc.now()
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now
	for id, session := range r.sessions {
		if session.State() != Submitting && session.phase() == reconcile.Ended {
			delete(r.sessions, id)
		}
	}
}

// Get returns the voter's live session, opening one if none exists.
func (r *Registry) Get(ctx context.Context, voterID string) (*Session, error) {
	r.mu.Lock()
	session, ok := r.sessions[voterID]
	r.mu.Unlock()
	if ok {
		return session, nil
	}
	return r.Open(ctx, voterID)
}

// RecordSignature stores a confirmed signature and drops the signer's
// session; the next page load reconciles from the stored record.
func (r *Registry) RecordSignature(ctx context.Context, message, signature, publicKey string) error {
	voterID, err := r.svc.RecordSignature(ctx, message, signature, publicKey)
	if err != nil {
		return err
	}
	r.Close(voterID)
	return nil
}

// Close drops the voter's session.
func (r *Registry) Close(voterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, voterID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
