// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for the voting flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeAccepted     = "accepted"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
	OutcomeSigned       = "signed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeUnknownVoter = "unknown_voter"
)

// Metrics is safe to use as nil; every method is then a no-op.
type Metrics struct {
	votes       *prometheus.CounterVec
	submissions *prometheus.CounterVec
	callbacks   *prometheus.CounterVec
	resigns     prometheus.Counter
}

// New registers the counters with registry. A nil registry returns nil.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		return nil
	}
	factory := promauto.With(registry)

	return &Metrics{
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_vote_ballot_votes_total",
			Help: "Single-vote adjustments by outcome",
		}, []string{"outcome"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_vote_submissions_total",
			Help: "Ballot submissions by outcome",
		}, []string{"outcome"}),
		callbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_vote_signature_callbacks_total",
			Help: "Signing provider callbacks by outcome",
		}, []string{"outcome"}),
		resigns: factory.NewCounter(prometheus.CounterOpts{
			Name: "quickly_vote_signature_retries_total",
			Help: "Voters returning to sign an already submitted ballot",
		}),
	}
}

func (m *Metrics) Vote(outcome string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Callback(outcome string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SigningRetry() {
	if m == nil {
		return
	}
	m.resigns.Inc()
}
