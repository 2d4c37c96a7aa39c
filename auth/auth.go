// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrUnauthorized    = errors.New("unauthorized")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey creates an HMAC-based admin key for an event
// This is deterministic and verifiable
func GenerateAdminKey(eventID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(eventID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the event
func ValidateAdminKey(eventID, adminKey, salt string) error {
	expected := GenerateAdminKey(eventID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// Verifier authenticates the Authorization header of a signing callback.
type Verifier interface {
	Verify(authorization string) error
}

// SharedSecret accepts "<scheme> <token>" where token is the base64 form
// of the shared secret.
type SharedSecret struct {
	encoded string
}

func NewSharedSecret(secret string) *SharedSecret {
	return &SharedSecret{encoded: base64.StdEncoding.EncodeToString([]byte(secret))}
}

func (s *SharedSecret) Verify(authorization string) error {
	parts := strings.Split(authorization, " ")
	if len(parts) < 2 {
		return ErrUnauthorized
	}
	given := parts[1]

	// Length is checked on the encoded form before anything is compared
	if given == "" || len(given) != len(s.encoded) {
		return ErrUnauthorized
	}

	givenRaw, err := base64.StdEncoding.DecodeString(given)
	if err != nil {
		return ErrUnauthorized
	}
	secretRaw, err := base64.StdEncoding.DecodeString(s.encoded)
	if err != nil {
		return ErrUnauthorized
	}
	if len(givenRaw) != len(secretRaw) || !hmac.Equal(givenRaw, secretRaw) {
		return ErrUnauthorized
	}
	return nil
}

// BearerToken builds the Authorization header value SharedSecret accepts.
func BearerToken(secret string) string {
	return "Bearer " + base64.StdEncoding.EncodeToString([]byte(secret))
}
