// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/models"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrVoterNotFound = errors.New("voter not found")
	ErrVoterChanged  = errors.New("voter changed since it was read")
)

// Store is the voter and event storage used by the handlers and the
// submission workflow.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// CreateEvent inserts the event, its options and numVoters fresh voters
// in one transaction. It returns the new voter IDs.
func (s *Store) CreateEvent(ctx context.Context, ev models.Event, numVoters int) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO event (id, title, description, credits_per_voter, start_event_date, end_event_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.ID, ev.Title, ev.Description, ev.CreditsPerVoter, ev.StartDate.UTC(), ev.EndDate.UTC(), createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	for i, opt := range ev.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_option (event_id, option_index, title, description, url)
			VALUES ($1, $2, $3, $4, $5)
		`, ev.ID, i, opt.Title, opt.Description, opt.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to insert option %d: %w", i, err)
		}
	}

	emptyVotes, err := encodeVotes(make([]int, len(ev.Options)))
	if err != nil {
		return nil, err
	}

	voterIDs := make([]string, 0, numVoters)
	for i := 0; i < numVoters; i++ {
		voterID := uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO voter (id, event_id, vote_data)
			VALUES ($1, $2, $3)
		`, voterID, ev.ID, emptyVotes)
		if err != nil {
			return nil, fmt.Errorf("failed to insert voter: %w", err)
		}
		voterIDs = append(voterIDs, voterID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event: %w", err)
	}

	s.logger.Info("event stored", "event_id", ev.ID, "options", len(ev.Options), "voters", numVoters)
	return voterIDs, nil
}

func (s *Store) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	var ev models.Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, credits_per_voter, start_event_date, end_event_date, created_at
		FROM event
		WHERE id = $1
	`, eventID).Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.CreditsPerVoter,
		&ev.StartDate, &ev.EndDate, &ev.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to query event: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT title, description, url
		FROM event_option
		WHERE event_id = $1
		ORDER BY option_index
	`, eventID)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	ev.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.Title, &opt.Description, &opt.URL); err != nil {
			return models.Event{}, fmt.Errorf("failed to scan option: %w", err)
		}
		ev.Options = append(ev.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Event{}, fmt.Errorf("failed to read options: %w", err)
	}

	return ev, nil
}

const voterColumns = `id, event_id, vote_data, hash, mudamos_url, signature, voted_at`

// FindVoter looks a voter up by ID. An empty eventID matches any event.
func (s *Store) FindVoter(ctx context.Context, eventID, voterID string) (models.VoterRecord, error) {
	query := `SELECT ` + voterColumns + ` FROM voter WHERE id = $1`
	args := []any{voterID}
	if eventID != "" {
		query += ` AND event_id = $2`
		args = append(args, eventID)
	}
	return s.scanVoter(s.db.QueryRowContext(ctx, query, args...))
}

// FindVoterByHash resolves the hash carried in a signed message.
func (s *Store) FindVoterByHash(ctx context.Context, hash string) (models.VoterRecord, error) {
	if hash == "" {
		return models.VoterRecord{}, ErrVoterNotFound
	}
	return s.scanVoter(s.db.QueryRowContext(ctx,
		`SELECT `+voterColumns+` FROM voter WHERE hash = $1`, hash))
}

func (s *Store) ListVoters(ctx context.Context, eventID string) ([]models.VoterRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+voterColumns+` FROM voter WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []models.VoterRecord{}
	for rows.Next() {
		v, err := s.scanVoter(rows)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read voters: %w", err)
	}
	return voters, nil
}

// UpdateVoter writes the non-nil fields of u. With u.ExpectHash set it
// returns ErrVoterChanged when another write got there first.
func (s *Store) UpdateVoter(ctx context.Context, voterID string, u models.VoterUpdate) error {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.PerOptionVotes != nil {
		encoded, err := encodeVotes(u.PerOptionVotes)
		if err != nil {
			return err
		}
		set("vote_data", encoded)
	}
	if u.Hash != nil {
		set("hash", *u.Hash)
	}
	if u.MudamosURL != nil {
		set("mudamos_url", *u.MudamosURL)
	}
	if u.VotedAt != nil {
		set("voted_at", u.VotedAt.UTC())
	}
	if u.ClearSignature {
		sets = append(sets, "signature = NULL", "public_key = NULL")
	} else {
		if u.Signature != nil {
			set("signature", *u.Signature)
		}
		if u.PublicKey != nil {
			set("public_key", *u.PublicKey)
		}
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, voterID)
	where := fmt.Sprintf("id = $%d", len(args))
	if u.ExpectHash != nil {
		args = append(args, *u.ExpectHash)
		where += fmt.Sprintf(" AND COALESCE(hash, '') = $%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE voter SET %s WHERE %s`, strings.Join(sets, ", "), where)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to update voter", "voter_id", voterID, "error", err)
		return fmt.Errorf("failed to update voter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		if u.ExpectHash == nil {
			return ErrVoterNotFound
		}
		return s.staleOrMissing(ctx, voterID)
	}
	return nil
}

func (s *Store) staleOrMissing(ctx context.Context, voterID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM voter WHERE id = $1`, voterID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrVoterNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check voter: %w", err)
	}
	return ErrVoterChanged
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanVoter(row scanner) (models.VoterRecord, error) {
	var (
		v         models.VoterRecord
		voteData  string
		hash      sql.NullString
		url       sql.NullString
		signature sql.NullString
		votedAt   sql.NullTime
	)
	err := row.Scan(&v.ID, &v.EventID, &voteData, &hash, &url, &signature, &votedAt)
	if err == sql.ErrNoRows {
		return models.VoterRecord{}, ErrVoterNotFound
	}
	if err != nil {
		return models.VoterRecord{}, fmt.Errorf("failed to scan voter: %w", err)
	}

	if err := json.Unmarshal([]byte(voteData), &v.PerOptionVotes); err != nil {
		return models.VoterRecord{}, fmt.Errorf("voter %s has corrupt vote data: %w", v.ID, err)
	}
	v.Hash = hash.String
	if url.Valid && url.String != "" {
		u := url.String
		v.MudamosURL = &u
	}
	v.SignatureExists = signature.Valid && signature.String != ""
	if votedAt.Valid {
		t := votedAt.Time
		v.VotedAt = &t
	}
	return v, nil
}

func encodeVotes(votes []int) (string, error) {
	b, err := json.Marshal(votes)
	if err != nil {
		return "", fmt.Errorf("failed to encode votes: %w", err)
	}
	return string(b), nil
}
