// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for event admin key HMAC (required)
  - AppSecret: Shared secret the signing provider presents on callbacks (required)
  - SignerURL: Signing provider base URL; empty builds mudamos:// links locally
  - SignerToken: Bearer token sent to the signing provider
  - AllowResign: Voters who already voted may unlock and submit again

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	--admin-salt    Admin key salt
	--app-secret    Callback shared secret
	--signer-url    Signing provider URL
	--signer-token  Signing provider token
	--allow-resign  true/false

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_KEY_SALT → --admin-salt
	APP_SECRET     → --app-secret
	SIGNER_URL     → --signer-url
	SIGNER_TOKEN   → --signer-token
	ALLOW_RESIGN   → --allow-resign

CLI flags take precedence over environment variables. main loads a .env
file into the environment before parsing.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - APP_SECRET must be provided
*/
package cliparse
