// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: postgres connection string or sqlite file path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSalt: Secret for session token HMAC (required)
  - Timezone / Location: zone that decides "today" for election dates (default: Local)
  - CastTimeout: deadline for the vote transaction (default: 5s)
  - SuperAdminEmail / SuperAdminPassword: optional account seeded at startup
  - CORSOrigin: allowed browser origin (optional)

# CLI Flags

	-p                     Server port
	-d                     Database URL
	-t                     Database type
	--session-salt         Session token salt
	--tz                   Timezone
	--cast-timeout         Vote transaction timeout
	--superadmin-email     Super admin email
	--superadmin-password  Super admin password
	--cors-origin          Allowed CORS origin

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	SESSION_SALT        → --session-salt
	TIMEZONE            → --tz
	CAST_TIMEOUT        → --cast-timeout
	SUPERADMIN_EMAIL    → --superadmin-email
	SUPERADMIN_PASSWORD → --superadmin-password
	CORS_ORIGIN         → --cors-origin

CLI flags take precedence over environment variables. main loads a .env
file into the environment before ParseFlags runs.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL or SESSION_SALT is missing
  - DATABASE_TYPE is not sqlite or postgres
  - TIMEZONE does not load or CAST_TIMEOUT is not a positive duration
  - only one of SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD is set
*/
package cliparse
