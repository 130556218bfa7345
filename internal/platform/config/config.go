// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first via 'joho/godotenv' when present.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, token processor) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Store Drivers

// Supported identity store backends.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the rexauth API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the identity store backend.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Document Database (MongoDB)
	MongoURL      string `env:"MONGO_URL"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"rexauth"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL"`

	// Access token signing
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	AccessTokenExp    int64  `env:"ACCESS_TOKEN_EXP"    envDefault:"900"`

	// Refresh token signing and cookie transport
	RefreshTokenSecret  string `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenExp     int64  `env:"REFRESH_TOKEN_EXP"     envDefault:"604800"`
	RefreshCookieName   string `env:"REFRESH_COOKIE_NAME"   envDefault:"rex"`
	RefreshCookieRoute  string `env:"REFRESH_COOKIE_ROUTE"  envDefault:"/api/v1/auth/refresh"`
	RefreshCookieSecure bool   `env:"REFRESH_COOKIE_SECURE" envDefault:"false"`

	// SchemaPath optionally points at a JSON identity schema. The built-in
	// email/password schema is used when empty.
	SchemaPath string `env:"SCHEMA_PATH"`

	// PublicFields is the default projection returned as userInfo.
	PublicFields []string `env:"PUBLIC_FIELDS" envDefault:"email" envSeparator:","`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the requirements that depend on other settings.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("config: MONGO_URL is required for the mongo store")
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required for the redis store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.AccessTokenExp <= 0 || c.RefreshTokenExp <= 0 {
		return errors.New("config: token expiry must be a positive number of seconds")
	}

	if strings.TrimSpace(c.RefreshCookieName) == "" {
		return errors.New("config: REFRESH_COOKIE_NAME must not be empty")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginAllowed reports whether a CORS origin is in the configured allow list.
func (c *Config) OriginAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}
