// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote runs quadratic votes: every voter gets a credit budget, and n
votes on one option cost n² credits. A submitted ballot only counts once
the voter has signed it through an external signing provider (Mudamos),
which confirms back through a callback.

# Starting the Server

	DATABASE_URL=file:vote.db ADMIN_KEY_SALT=... APP_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-salt ... -app-secret ...

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - ADMIN_KEY_SALT (-admin-salt): secret for organizer admin keys
  - APP_SECRET (-app-secret): shared secret of the signing callback

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SIGNER_URL (-signer-url), SIGNER_TOKEN (-signer-token): signing
    provider; without a URL mudamos:// deep links are issued locally
  - ALLOW_RESIGN (-allow-resign): let voters change a submitted ballot

# Architecture

  - ledger: quadratic credit arithmetic
  - ballot: in-progress ballot state machine
  - reconcile: initial session state from a stored voter record
  - workflow: submission, signing url and signature recording
  - signing, auth: signing provider client and callback verification
  - db, models: storage and wire types
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus counters
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
