// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/signing"
	"github.com/danielhkuo/quickly-vote/testutil"
)

func validEventRequest() models.CreateEventRequest {
	start, end := testutil.EventWindow()
	return models.CreateEventRequest{
		Title:           "Budget 2026",
		Description:     "Where should the money go?",
		CreditsPerVoter: 100,
		StartDate:       start,
		EndDate:         end,
		Options: []models.Option{
			{Title: "Parks", Description: "More trees"},
			{Title: "Bike lanes", URL: "https://example.org/bikes"},
		},
		NumVoters: 3,
	}
}

func TestCreateEvent(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)

	tests := []struct {
		name           string
		modify         func(req *models.CreateEventRequest)
		rawBody        string
		expectedStatus int
	}{
		{
			name:           "valid event",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "zero credits allowed",
			modify:         func(req *models.CreateEventRequest) { req.CreditsPerVoter = 0 },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			modify:         func(req *models.CreateEventRequest) { req.Title = "  " },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative credits",
			modify:         func(req *models.CreateEventRequest) { req.CreditsPerVoter = -1 },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no options",
			modify:         func(req *models.CreateEventRequest) { req.Options = nil },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "untitled option",
			modify:         func(req *models.CreateEventRequest) { req.Options[1].Title = "" },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "end before start",
			modify: func(req *models.CreateEventRequest) {
				req.EndDate = req.StartDate.Add(-time.Minute)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "too many voters",
			modify:         func(req *models.CreateEventRequest) { req.NumVoters = MaxVotersPerEvent + 1 },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			rawBody:        "not json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body interface{}
			if tt.rawBody != "" {
				body = tt.rawBody
			} else {
				req := validEventRequest()
				if tt.modify != nil {
					tt.modify(&req)
				}
				body = req
			}

			w := httptest.NewRecorder()
			s.events.CreateEvent(w, testutil.MakeRequest("POST", "/events", body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.CreateEventResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.AdminKey != auth.GenerateAdminKey(resp.EventID, s.cfg.AdminKeySalt) {
				t.Error("Admin key does not match expected value")
			}
			if len(resp.VoterIDs) != 3 {
				t.Fatalf("Expected 3 voter ids, got %d", len(resp.VoterIDs))
			}

			record, err := s.store.FindVoter(context.Background(), resp.EventID, resp.VoterIDs[0])
			if err != nil {
				t.Fatalf("Failed to load created voter: %v", err)
			}
			if len(record.PerOptionVotes) != 2 || record.PerOptionVotes[0] != 0 || record.PerOptionVotes[1] != 0 {
				t.Errorf("Expected zeroed votes, got %v", record.PerOptionVotes)
			}
		})
	}
}

func TestGetEventAdmin(t *testing.T) {
	s := newTestServer(t, signing.StaticProvider{}, false)
	ev, voters := testutil.CreateTestEvent(t, s.store, 20, []string{"A", "B"}, 4)
	testutil.SetTestVotes(t, s.store, voters[0], []int{2, 1}, "h0", true)
	testutil.SetTestVotes(t, s.store, voters[1], []int{0, 3}, "h1", false)

	adminKey := auth.GenerateAdminKey(ev.ID, s.cfg.AdminKeySalt)

	tests := []struct {
		name           string
		eventID        string
		adminKey       string
		expectedStatus int
	}{
		{"valid admin key", ev.ID, adminKey, http.StatusOK},
		{"wrong admin key", ev.ID, "nope", http.StatusUnauthorized},
		{"key for another event", "other", adminKey, http.StatusUnauthorized},
		{"unknown event", "missing", auth.GenerateAdminKey("missing", s.cfg.AdminKeySalt), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/events/"+tt.eventID+"/admin", nil,
				map[string]string{"X-Admin-Key": tt.adminKey})
			req.SetPathValue("id", tt.eventID)
			w := httptest.NewRecorder()
			s.events.GetEventAdmin(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp models.EventAdminResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Voters != 4 || resp.Voted != 2 || resp.Signed != 1 {
				t.Errorf("Expected 4/2/1 voters/voted/signed, got %d/%d/%d", resp.Voters, resp.Voted, resp.Signed)
			}
			if len(resp.Event.Options) != 2 || resp.Event.Options[1].Title != "B" {
				t.Errorf("Unexpected options: %+v", resp.Event.Options)
			}
		})
	}
}
