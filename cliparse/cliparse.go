package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host

	"github.com/danielhkuo/urna/db"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	SessionSalt  string

	// Timezone names the zone that decides which calendar day it is for
	// election dates. Location is its parsed form.
	Timezone string
	Location *time.Location

	CastTimeout time.Duration

	// Optional super admin seeded at startup when both are set
	SuperAdminEmail    string
	SuperAdminPassword string

	CORSOrigin string
}

const defaultCastTimeout = 5 * time.Second

// ParseFlags validates flags and fills in environment fallbacks and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var castTimeout string

	fs := flag.NewFlagSet("urna", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type: sqlite (single writer, dev and small schools) or postgres (concurrent production use)")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", "", "Allowed CORS origin")

	// Election behaviour
	fs.StringVar(&cfg.Timezone, "tz", "", "IANA timezone for election dates (default Local)")
	fs.StringVar(&castTimeout, "cast-timeout", "", "Vote transaction timeout, e.g. 5s")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token signing salt (prefer env)")
	fs.StringVar(&cfg.SuperAdminEmail, "superadmin-email", "", "Super admin email to seed")
	fs.StringVar(&cfg.SuperAdminPassword, "superadmin-password", "", "Super admin password to seed (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return Config{}, err
	}
	cfg.DatabaseType = string(dialect)

	if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("TIMEZONE")
	}
	if cfg.Timezone == "" || cfg.Timezone == "Local" {
		cfg.Timezone = "Local"
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if castTimeout == "" {
		castTimeout = os.Getenv("CAST_TIMEOUT")
	}
	cfg.CastTimeout = defaultCastTimeout
	if castTimeout != "" {
		d, err := time.ParseDuration(castTimeout)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid cast timeout %q", castTimeout)
		}
		cfg.CastTimeout = d
	}

	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = os.Getenv("CORS_ORIGIN")
	}

	// Secrets - MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	if cfg.SuperAdminEmail == "" {
		cfg.SuperAdminEmail = os.Getenv("SUPERADMIN_EMAIL")
	}
	if cfg.SuperAdminPassword == "" {
		cfg.SuperAdminPassword = os.Getenv("SUPERADMIN_PASSWORD")
	}
	if (cfg.SuperAdminEmail == "") != (cfg.SuperAdminPassword == "") {
		return Config{}, errors.New("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}
