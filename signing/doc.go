// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package signing talks to the external provider that collects a voter's
signature over a submitted ballot.

# Messages

A ballot is identified towards the provider by a hash over voter, event and
allocation. The message handed to the provider starts with that hash, which
is how the signature callback finds the voter again:

	hash := signing.Hash(voterID, eventID, allocation)
	msg := signing.Message(hash, eventID, allocation) // "hash;eventID;3,0,-1"
	signing.HashFromMessage(msg)                     // hash

# Providers

	type Provider interface {
		RequestSignature(ctx context.Context, message string) (string, error)
	}

HTTPProvider POSTs {"message": ...} to <base>/sign and returns the "url"
field of the reply. StaticProvider builds a mudamos:// deep link locally
and is used when no provider URL is configured.
*/
package signing
