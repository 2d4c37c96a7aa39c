// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const separator = ";"

// Hash returns the hex SHA-256 of "voterID;eventID;v0,v1,...".
func Hash(voterID, eventID string, allocation []int) string {
	sum := sha256.Sum256([]byte(voterID + separator + eventID + separator + joinVotes(allocation)))
	return hex.EncodeToString(sum[:])
}

// Message is the payload the voter signs.
func Message(hash, eventID string, allocation []int) string {
	return hash + separator + eventID + separator + joinVotes(allocation)
}

// HashFromMessage returns the first segment of a signed message.
func HashFromMessage(message string) string {
	hash, _, _ := strings.Cut(message, separator)
	return strings.TrimSpace(hash)
}

func joinVotes(allocation []int) string {
	parts := make([]string, len(allocation))
	for i, v := range allocation {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
