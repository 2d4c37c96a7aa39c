// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(eventID, salt)
	err := auth.ValidateAdminKey(eventID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same event ID and salt always produce the same key. This allows validation
without storing the key in the database.

# Signing Callbacks

The signing provider authenticates with a single shared secret. Callback
handlers depend on the Verifier interface so the scheme can be replaced
without touching vote recording:

	var v auth.Verifier = auth.NewSharedSecret(appSecret)
	err := v.Verify(r.Header.Get("Authorization"))

SharedSecret expects "Bearer base64(secret)". Headers without a token, or
with a token whose length differs from the expected one, fail before any
comparison; equal-length tokens are compared in constant time. Every
failure is ErrUnauthorized.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
