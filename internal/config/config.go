// Package config loads server configuration.
//
// Sources, in order of precedence:
//  1. CLI flags (bound in cmd/server, override everything)
//  2. Environment variables
//  3. A .env file in the working directory, parsed into the environment
//
// The .env file is a convenience for development; in deployment the SHAKER_*
// variables come from the process environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	// DBPath is the path to the SQLite database file, created on first open.
	DBPath string `env:"SHAKER_DB" envDefault:"shaker.db"`

	// Addr is the address for the HTTP API to listen on.
	Addr string `env:"SHAKER_ADDR" envDefault:"127.0.0.1:9001"`

	// Token is the shared token required on every request. Empty disables
	// the check.
	Token string `env:"SHAKER_TOKEN"`

	// ImportPath, when set, switches the process into legacy-import mode:
	// the file's line-separated display names are imported and the process
	// exits without serving HTTP.
	ImportPath string `env:"SHAKER_IMPORT"`
}

// Load reads the .env file (if present) into the environment, then parses
// the SHAKER_* variables into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
