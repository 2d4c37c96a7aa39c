// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

const (
	TestAdminSalt = "test-admin-salt"
	TestAppSecret = "test-app-secret"
)

// SetupTestDB creates a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a Store over a fresh test database
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t), DiscardLogger())
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.TypeSQLite,
		AdminKeySalt: TestAdminSalt,
		AppSecret:    TestAppSecret,
	}
}

// EventWindow is a voting window that is open at time.Now
func EventWindow() (start, end time.Time) {
	now := time.Now().UTC().Truncate(time.Second)
	return now.Add(-time.Hour), now.Add(24 * time.Hour)
}

// CreateTestEvent stores an open event with the given options and voters and
// returns it together with the voter IDs
func CreateTestEvent(t *testing.T, store *db.Store, credits int, options []string, numVoters int) (models.Event, []string) {
	t.Helper()

	start, end := EventWindow()
	return CreateTestEventWindow(t, store, credits, options, numVoters, start, end)
}

// CreateTestEventWindow is CreateTestEvent with an explicit voting window
func CreateTestEventWindow(t *testing.T, store *db.Store, credits int, options []string, numVoters int, start, end time.Time) (models.Event, []string) {
	t.Helper()

	eventID, _ := auth.GenerateID(16)
	ev := models.Event{
		ID:              eventID,
		Title:           "Test Event",
		Description:     "A test event",
		CreditsPerVoter: credits,
		StartDate:       start,
		EndDate:         end,
	}
	for _, title := range options {
		ev.Options = append(ev.Options, models.Option{Title: title})
	}

	voterIDs, err := store.CreateEvent(context.Background(), ev, numVoters)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	stored, err := store.GetEvent(context.Background(), eventID)
	if err != nil {
		t.Fatalf("Failed to reload test event: %v", err)
	}
	return stored, voterIDs
}

// SetTestVotes writes an allocation (and optionally a signature) directly
func SetTestVotes(t *testing.T, store *db.Store, voterID string, votes []int, hash string, signed bool) {
	t.Helper()

	update := models.VoterUpdate{PerOptionVotes: votes}
	if hash != "" {
		update.Hash = &hash
		url := "mudamos://sign?message=" + hash
		update.MudamosURL = &url
	}
	if signed {
		sig, key := "sig", "key"
		update.Signature = &sig
		update.PublicKey = &key
	}
	if err := store.UpdateVoter(context.Background(), voterID, update); err != nil {
		t.Fatalf("Failed to set test votes: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
