// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reconcile derives the initial session state from a persisted voter
record.

	state := reconcile.Reconcile(record, event, time.Now())

Reconcile is a pure function of its inputs; running it again on the same
record (or on a record the signing callback updated in the meantime) is
always safe.

# View selection

SelectView picks what the voter sees from four facts, first match wins:

	phase == Ended                                   → ViewEnded
	phase == NotStarted                              → ViewNotStarted
	signing URL held && (!alreadyVoted || needsSig)  → ViewAwaitingSignature
	needsSignature                                   → ViewSignatureRetry
	alreadyVoted                                     → ViewHistoric
	otherwise                                        → ViewEditing
*/
package reconcile
