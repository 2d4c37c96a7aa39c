// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/signing"
	"github.com/danielhkuo/quickly-vote/testutil"
	"github.com/danielhkuo/quickly-vote/workflow"
)

type failingSigner struct{}

func (failingSigner) RequestSignature(ctx context.Context, message string) (string, error) {
	return "", errors.New("signing provider unavailable")
}

type testServer struct {
	store    *db.Store
	cfg      cliparse.Config
	sessions *workflow.Registry
	events   *EventHandler
	voting   *VotingHandler
	callback *CallbackHandler
	results  *ResultsHandler
}

func newTestServer(t *testing.T, signer signing.Provider, allowResign bool) *testServer {
	t.Helper()

	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	cfg.AllowResign = allowResign
	m := metrics.New(prometheus.NewRegistry())

	svc := workflow.NewService(store, signer, workflow.Options{
		AllowResign: allowResign,
		Logger:      testutil.DiscardLogger(),
		Metrics:     m,
	})

	sessions := workflow.NewRegistry(svc)

	return &testServer{
		store:    store,
		cfg:      cfg,
		sessions: sessions,
		events:   NewEventHandler(store, cfg),
		voting:   NewVotingHandler(sessions),
		callback: NewCallbackHandler(sessions, auth.NewSharedSecret(cfg.AppSecret), m),
		results:  NewResultsHandler(store, cfg),
	}
}

// vote runs one request against a voting endpoint for voterID
func (s *testServer) vote(t *testing.T, method, path, voterID string, body interface{}, handle http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest(method, path, body, nil)
	req.SetPathValue("voter", voterID)
	w := httptest.NewRecorder()
	handle(w, req)
	return w
}

func (s *testServer) loadSession(t *testing.T, voterID string) models.VoteSessionResponse {
	t.Helper()
	w := s.vote(t, "GET", "/vote/"+voterID, voterID, nil, s.voting.GetSession)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteSessionResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func (s *testServer) adjust(t *testing.T, voterID string, index int, increment bool) *httptest.ResponseRecorder {
	t.Helper()
	return s.vote(t, "POST", "/vote/"+voterID+"/adjust", voterID,
		models.AdjustVoteRequest{Index: index, Increment: increment}, s.voting.AdjustVote)
}

func (s *testServer) submit(t *testing.T, voterID string) *httptest.ResponseRecorder {
	t.Helper()
	return s.vote(t, "POST", "/vote/"+voterID+"/submit", voterID, nil, s.voting.SubmitVote)
}

func (s *testServer) signCallback(t *testing.T, authorization string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	headers := map[string]string{}
	if authorization != "" {
		headers["Authorization"] = authorization
	}
	req := testutil.MakeRequest("POST", "/events/callback", body, headers)
	w := httptest.NewRecorder()
	s.callback.RecordSignature(w, req)
	return w
}
