package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	AppSecret    string
	SignerURL    string
	SignerToken  string
	AllowResign  bool
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var allowResign string

	fs := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.SignerURL, "signer-url", "", "Signing provider base URL (empty uses deep links)")
	fs.StringVar(&allowResign, "allow-resign", "", "Let voters who already voted change and re-sign their ballot")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.AppSecret, "app-secret", "", "Signing callback shared secret (prefer env)")
	fs.StringVar(&cfg.SignerToken, "signer-token", "", "Signing provider token (prefer env)")

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

	if cfg.SignerURL == "" {
		cfg.SignerURL = os.Getenv("SIGNER_URL")
	}
	if cfg.SignerToken == "" {
		cfg.SignerToken = os.Getenv("SIGNER_TOKEN")
	}

	if allowResign == "" {
		allowResign = os.Getenv("ALLOW_RESIGN")
	}
	if allowResign != "" {
		v, err := strconv.ParseBool(allowResign)
		if err != nil {
			return Config{}, errors.New("invalid ALLOW_RESIGN value")
		}
		cfg.AllowResign = v
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.AppSecret == "" {
		cfg.AppSecret = os.Getenv("APP_SECRET")
	}
	if cfg.AppSecret == "" {
		return Config{}, errors.New("APP_SECRET required")
	}

	return cfg, nil
}
