package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-level settings shared by the kiosk
// commands. Flags override environment variables, which override the
// defaults; a .env file in the working directory is honored when present.
type Config struct {
	APIBase     string
	DBPath      string
	IdleTimeout time.Duration
}

// Environment variable names.
const (
	EnvAPIBase     = "KIOSKO_API_BASE"
	EnvDBPath      = "KIOSKO_DB"
	EnvIdleTimeout = "KIOSKO_IDLE_TIMEOUT" // seconds
)

// Defaults.
const (
	DefaultAPIBase = "http://localhost:8000"
	DefaultDBPath  = "kiosko.db"
)

// LoadConfig resolves the configuration from a .env file (if any) and the
// process environment. Values already set via flags are kept.
func LoadConfig(apiBase, dbPath string) (Config, error) {
	// A missing .env file is not an error; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		APIBase: apiBase,
		DBPath:  dbPath,
	}
	if cfg.APIBase == "" {
		cfg.APIBase = os.Getenv(EnvAPIBase)
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.DBPath == "" {
		cfg.DBPath = os.Getenv(EnvDBPath)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}

	if raw := os.Getenv(EnvIdleTimeout); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid %s %q: want a positive number of seconds", EnvIdleTimeout, raw)
		}
		cfg.IdleTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
