// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package workflow runs the submission and signature step of a ballot.

A Service owns the server side of the flow:

	Submit          validate, request a signing URL, persist votes + URL
	RetrySigning    hand back the URL stored with the last submission
	RecordSignature store the provider's signature on the voter found by hash

Submit writes nothing until the signing provider has issued a URL, so a
failed submission leaves the stored record untouched. Errors come back as
*SubmitError with Kind Rejected (over budget, event not open, already
voted) or Failed (storage or provider trouble). Nothing is retried
automatically.

A Session wraps one voter's ballot.Machine for the life of a page:

	Idle → Submitting → SigningRequired
	                  ↘ SubmitRejected / SubmitFailed (ballot editable again)

Once a signing URL exists the ballot leaves Editing and stays hidden for
the rest of the session. Signature confirmation arrives through the
callback and is observed by the next session the Registry opens for that
voter.

The Registry keeps at most one live session per voter. Opening a session
while a submission is in flight returns the in-flight session. Sessions
are dropped once the voter's signature is recorded or the event ends.

Service.Submit runs at most one submission per voter at a time, and its
write only lands if the stored ballot is still the one it read. A stale
session that lost the race gets a Rejected error wrapping ErrAlreadyVoted.
*/
package workflow
