// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/signing"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func TestGetSession(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)
	_, voters := testutil.CreateTestEvent(t, s.store, 20, []string{"A", "B"}, 2)
	testutil.SetTestVotes(t, s.store, voters[1], []int{3, 0}, "h1", false)

	t.Run("fresh voter edits", func(t *testing.T) {
		resp := s.loadSession(t, voters[0])
		if resp.View != models.ViewEditing {
			t.Errorf("Expected view %q, got %q", models.ViewEditing, resp.View)
		}
		if resp.Phase != models.PhaseOpen {
			t.Errorf("Expected phase open, got %q", resp.Phase)
		}
		if resp.Ballot.CreditsRemaining != 20 || resp.Ballot.ReadOnly {
			t.Errorf("Unexpected ballot: %+v", resp.Ballot)
		}
	})

	t.Run("voted but unsigned", func(t *testing.T) {
		resp := s.loadSession(t, voters[1])
		if !resp.AlreadyVoted || !resp.NeedsSignature {
			t.Errorf("Expected voted and needing signature, got %+v", resp)
		}
		if resp.View != models.ViewSignatureRetry {
			t.Errorf("Expected view %q, got %q", models.ViewSignatureRetry, resp.View)
		}
		if resp.Ballot.CreditsRemaining != 11 {
			t.Errorf("Expected 11 credits remaining, got %d", resp.Ballot.CreditsRemaining)
		}
		if resp.Signature != models.SignatureAwaitingURL {
			t.Errorf("Expected signature status %q, got %q", models.SignatureAwaitingURL, resp.Signature)
		}
	})

	t.Run("unknown voter", func(t *testing.T) {
		w := s.vote(t, "GET", "/vote/nobody", "nobody", nil, s.voting.GetSession)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetSessionEndedEvent(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)
	now := time.Now().UTC()
	_, voters := testutil.CreateTestEventWindow(t, s.store, 10, []string{"A"}, 1, now.Add(-48*time.Hour), now.Add(-time.Minute))
	testutil.SetTestVotes(t, s.store, voters[0], []int{1}, "h0", false)

	resp := s.loadSession(t, voters[0])
	if resp.View != models.ViewEnded {
		t.Errorf("Expected view %q, got %q", models.ViewEnded, resp.View)
	}

	w := s.adjust(t, voters[0], 0, true)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestAdjustVote(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)
	_, voters := testutil.CreateTestEvent(t, s.store, 4, []string{"A", "B"}, 1)
	voterID := voters[0]

	steps := []struct {
		name           string
		index          int
		increment      bool
		expectedStatus int
		allocation     []int
		remaining      int
	}{
		{"first vote", 0, true, http.StatusOK, []int{1, 0}, 3},
		{"second vote", 0, true, http.StatusOK, []int{2, 0}, 0},
		{"third vote over budget", 0, true, http.StatusConflict, []int{2, 0}, 0},
		{"other option blocked at zero budget", 1, false, http.StatusConflict, []int{2, 0}, 0},
		{"moving toward zero is free", 0, false, http.StatusOK, []int{1, 0}, 3},
		{"vote against", 1, false, http.StatusOK, []int{1, -1}, 2},
		{"index out of range", 5, true, http.StatusConflict, []int{1, -1}, 2},
		{"negative index", -1, true, http.StatusConflict, []int{1, -1}, 2},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			w := s.adjust(t, voterID, step.index, step.increment)
			testutil.AssertStatus(t, w, step.expectedStatus)

			resp := s.currentSession(t, voterID)
			if len(resp.Ballot.Allocation) != 2 ||
				resp.Ballot.Allocation[0] != step.allocation[0] ||
				resp.Ballot.Allocation[1] != step.allocation[1] {
				t.Errorf("Expected allocation %v, got %v", step.allocation, resp.Ballot.Allocation)
			}
			if resp.Ballot.CreditsRemaining != step.remaining {
				t.Errorf("Expected %d remaining, got %d", step.remaining, resp.Ballot.CreditsRemaining)
			}
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		w := s.vote(t, "POST", "/vote/"+voterID+"/adjust", voterID, "garbage", s.voting.AdjustVote)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

// currentSession reads the live session without reloading it
func (s *testServer) currentSession(t *testing.T, voterID string) models.VoteSessionResponse {
	t.Helper()
	w := s.vote(t, "GET", "/vote/"+voterID+"/ballot", voterID, nil, s.voting.GetBallot)
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteSessionResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func TestToggleOption(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)
	_, voters := testutil.CreateTestEvent(t, s.store, 4, []string{"A", "B"}, 1)

	toggle := func(index string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/vote/x/toggle/"+index, nil, nil)
		req.SetPathValue("voter", voters[0])
		req.SetPathValue("index", index)
		w := httptest.NewRecorder()
		s.voting.ToggleOption(w, req)
		return w
	}

	w := toggle("1")
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.VoteSessionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Ballot.Expanded[0] || !resp.Ballot.Expanded[1] {
		t.Errorf("Expected only option 1 expanded, got %v", resp.Ballot.Expanded)
	}

	testutil.AssertStatus(t, toggle("2"), http.StatusBadRequest)
	testutil.AssertStatus(t, toggle("one"), http.StatusBadRequest)
}

func TestSubmitVote(t *testing.T) {
	t.Run("issues signing url and persists", func(t *testing.T) {
		s := newTestServer(t, signing.StaticProvider{}, false)
		ev, voters := testutil.CreateTestEvent(t, s.store, 10, []string{"A", "B"}, 1)
		voterID := voters[0]

		s.loadSession(t, voterID)
		testutil.AssertStatus(t, s.adjust(t, voterID, 1, true), http.StatusOK)
		testutil.AssertStatus(t, s.adjust(t, voterID, 1, true), http.StatusOK)

		w := s.submit(t, voterID)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.SubmitVoteResponse
		testutil.AssertJSON(t, w, &resp)

		wantURL, _ := signing.StaticProvider{}.RequestSignature(context.Background(),
			signing.Message(resp.Hash, ev.ID, []int{0, 2}))
		if resp.URL != wantURL {
			t.Errorf("Expected url %q, got %q", wantURL, resp.URL)
		}

		record, err := s.store.FindVoter(context.Background(), ev.ID, voterID)
		if err != nil {
			t.Fatalf("Failed to load voter: %v", err)
		}
		if record.PerOptionVotes[1] != 2 || record.SigningURL() != resp.URL {
			t.Errorf("Unexpected stored record: %+v", record)
		}

		session := s.currentSession(t, voterID)
		if session.View != models.ViewAwaitingSignature {
			t.Errorf("Expected view %q, got %q", models.ViewAwaitingSignature, session.View)
		}

		// The ballot is hidden once a signing url exists
		testutil.AssertStatus(t, s.adjust(t, voterID, 0, true), http.StatusConflict)
		testutil.AssertStatus(t, s.submit(t, voterID), http.StatusUnprocessableEntity)
	})

	t.Run("provider failure", func(t *testing.T) {
		s := newTestServer(t, failingSigner{}, false)
		_, voters := testutil.CreateTestEvent(t, s.store, 10, []string{"A"}, 1)

		testutil.AssertStatus(t, s.adjust(t, voters[0], 0, true), http.StatusOK)
		testutil.AssertStatus(t, s.submit(t, voters[0]), http.StatusBadGateway)

		session := s.currentSession(t, voters[0])
		if session.Submission != "failed" || session.View != models.ViewEditing {
			t.Errorf("Expected failed submission back in editing, got %q/%q", session.Submission, session.View)
		}
		if session.Ballot.Allocation[0] != 1 {
			t.Errorf("Expected allocation to survive, got %v", session.Ballot.Allocation)
		}
	})

	t.Run("already voted", func(t *testing.T) {
		s := newTestServer(t, signing.StaticProvider{}, false)
		_, voters := testutil.CreateTestEvent(t, s.store, 10, []string{"A"}, 1)
		testutil.SetTestVotes(t, s.store, voters[0], []int{2}, "h0", true)

		testutil.AssertStatus(t, s.submit(t, voters[0]), http.StatusUnprocessableEntity)
	})

	t.Run("unknown voter", func(t *testing.T) {
		s := newTestServer(t, signing.StaticProvider{}, false)
		testutil.AssertStatus(t, s.submit(t, "nobody"), http.StatusNotFound)
	})
}

func TestUnlock(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t, signing.StaticProvider{}, false)
		_, voters := testutil.CreateTestEvent(t, s.store, 10, []string{"A"}, 1)
		testutil.SetTestVotes(t, s.store, voters[0], []int{2}, "h0", true)

		w := s.vote(t, "POST", "/vote/x/unlock", voters[0], nil, s.voting.Unlock)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("re-sign", func(t *testing.T) {
		s := newTestServer(t, signing.StaticProvider{}, true)
		ev, voters := testutil.CreateTestEvent(t, s.store, 10, []string{"A"}, 1)
		testutil.SetTestVotes(t, s.store, voters[0], []int{2}, "h0", true)

		if resp := s.loadSession(t, voters[0]); resp.View != models.ViewHistoric {
			t.Fatalf("Expected historic view, got %q", resp.View)
		}
		testutil.AssertStatus(t, s.adjust(t, voters[0], 0, true), http.StatusConflict)

		w := s.vote(t, "POST", "/vote/x/unlock", voters[0], nil, s.voting.Unlock)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.VoteSessionResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.View != models.ViewEditing || resp.Ballot.ReadOnly {
			t.Errorf("Expected editable ballot, got %q read_only=%v", resp.View, resp.Ballot.ReadOnly)
		}

		testutil.AssertStatus(t, s.adjust(t, voters[0], 0, true), http.StatusOK)
		testutil.AssertStatus(t, s.submit(t, voters[0]), http.StatusOK)

		record, err := s.store.FindVoter(context.Background(), ev.ID, voters[0])
		if err != nil {
			t.Fatalf("Failed to load voter: %v", err)
		}
		if record.PerOptionVotes[0] != 3 || record.SignatureExists {
			t.Errorf("Expected new unsigned ballot [3], got %v signed=%v", record.PerOptionVotes, record.SignatureExists)
		}
	})
}

func TestRetrySigning(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)
	_, voters := testutil.CreateTestEvent(t, s.store, 10, []string{"A"}, 2)
	testutil.SetTestVotes(t, s.store, voters[0], []int{2}, "h0", false)

	retry := func(voterID string) *httptest.ResponseRecorder {
		return s.vote(t, "POST", "/vote/x/retry-signing", voterID, nil, s.voting.RetrySigning)
	}

	s.loadSession(t, voters[0])
	w := retry(voters[0])
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.SubmitVoteResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.URL != "mudamos://sign?message=h0" {
		t.Errorf("Expected stored url, got %q", resp.URL)
	}

	session := s.currentSession(t, voters[0])
	if session.View != models.ViewAwaitingSignature {
		t.Errorf("Expected view %q, got %q", models.ViewAwaitingSignature, session.View)
	}

	// Nothing to sign for a voter who never submitted
	testutil.AssertStatus(t, retry(voters[1]), http.StatusConflict)
	testutil.AssertStatus(t, retry("nobody"), http.StatusNotFound)
}
