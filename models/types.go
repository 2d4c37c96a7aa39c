// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Session views, see reconcile.SelectView
const (
	ViewEditing           = "editing"
	ViewSignatureRetry    = "signature_retry"
	ViewAwaitingSignature = "awaiting_signature"
	ViewHistoric          = "historic"
	ViewNotStarted        = "not_started"
	ViewEnded             = "ended"
)

// Signature status of a session
const (
	SignatureNotNeeded    = "not_needed"
	SignatureAwaitingURL  = "awaiting_url"
	SignatureAwaitingUser = "awaiting_user"
	SignatureConfirmed    = "confirmed"
)

// Event phases
const (
	PhaseNotStarted = "not_started"
	PhaseOpen       = "open"
	PhaseEnded      = "ended"
)

// Request types

type CreateEventRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreditsPerVoter int       `json:"credits_per_voter"`
	StartDate       time.Time `json:"start_event_date"`
	EndDate         time.Time `json:"end_event_date"`
	Options         []Option  `json:"options"`
	NumVoters       int       `json:"num_voters"`
}

type AdjustVoteRequest struct {
	Index     int  `json:"index"`
	Increment bool `json:"increment"`
}

// Sent by the signing provider once the voter signed.
// message is "hash;..." where hash identifies the voter.
type SignatureCallbackRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// Response types

type CreateEventResponse struct {
	EventID  string   `json:"event_id"`
	AdminKey string   `json:"admin_key"`
	VoterIDs []string `json:"voter_ids"`
}

type EventAdminResponse struct {
	Event  Event `json:"event"`
	Voters int   `json:"voters"`
	Voted  int   `json:"voted"`
	Signed int   `json:"signed"`
}

type BallotSnapshot struct {
	State            string `json:"state"`
	Allocation       []int  `json:"allocation"`
	CreditsRemaining int    `json:"credits_remaining"`
	Expanded         []bool `json:"expanded"`
	ReadOnly         bool   `json:"read_only"`
}

type VoteSessionResponse struct {
	VoterID        string         `json:"voter_id"`
	Event          Event          `json:"event_data"`
	View           string         `json:"view"`
	Phase          string         `json:"phase"`
	AlreadyVoted   bool           `json:"already_voted"`
	NeedsSignature bool           `json:"needs_signature"`
	SigningURL     string         `json:"signing_url,omitempty"`
	Signature      string         `json:"signature_status"`
	Submission     string         `json:"submission"`
	Ballot         BallotSnapshot `json:"ballot"`
	// Last submitted allocation, shown next to each option once voted
	Previous []int `json:"previous_votes"`
}

type SubmitVoteResponse struct {
	URL  string `json:"url"`
	Hash string `json:"hash,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type OptionResult struct {
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Votes   int    `json:"votes"`
	Credits int    `json:"credits"`
}

type EventResults struct {
	EventID         string         `json:"event_id"`
	CreditsPerVoter int            `json:"credits_per_voter"`
	Voters          int            `json:"voters"`
	Voted           int            `json:"voted"`
	Signed          int            `json:"signed"`
	Options         []OptionResult `json:"options"`
}

// Domain types

// Option is identified by its position in Event.Options.
type Option struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"event_title"`
	Description     string    `json:"event_description"`
	CreditsPerVoter int       `json:"credits_per_voter"`
	StartDate       time.Time `json:"start_event_date"`
	EndDate         time.Time `json:"end_event_date"`
	Options         []Option  `json:"options"`
	CreatedAt       time.Time `json:"created_at"`
}

// VoterRecord is the persisted state of one voter. PerOptionVotes holds
// the last submitted allocation and always has one entry per option.
type VoterRecord struct {
	ID              string     `json:"id"`
	EventID         string     `json:"event_id"`
	Hash            string     `json:"-"`
	PerOptionVotes  []int      `json:"vote_data"`
	SignatureExists bool       `json:"signature_exists"`
	MudamosURL      *string    `json:"mudamos_url,omitempty"`
	VotedAt         *time.Time `json:"voted_at,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with r.
func (r VoterRecord) Clone() VoterRecord {
	out := r
	out.PerOptionVotes = append([]int(nil), r.PerOptionVotes...)
	if r.MudamosURL != nil {
		u := *r.MudamosURL
		out.MudamosURL = &u
	}
	if r.VotedAt != nil {
		v := *r.VotedAt
		out.VotedAt = &v
	}
	return out
}

// SigningURL returns the stored signing URL or "".
func (r VoterRecord) SigningURL() string {
	if r.MudamosURL == nil {
		return ""
	}
	return *r.MudamosURL
}

// VoterUpdate lists the fields an update changes; nil fields are kept.
type VoterUpdate struct {
	PerOptionVotes []int
	Hash           *string
	MudamosURL     *string
	Signature      *string
	PublicKey      *string
	VotedAt        *time.Time
	// Drops a signature that belonged to an earlier allocation
	ClearSignature bool
	// When set, the update applies only while the stored hash still equals
	// it ("" matches a voter that never submitted).
	ExpectHash *string
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
