package config

import (
	"fmt"
	"os"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	PORT         - Server port (default: "8080")
//	ENVIRONMENT  - Runtime environment (default: "development")
//	TOKEN_SECRET - HMAC secret for bearer tokens
//	DATABASE_URL - One of:
//	               "memory" or empty   - in-memory store (default)
//	               "postgres://..."    - PostgreSQL
//	               "postgresql://..."  - PostgreSQL
//	               "sqlite:///path.db" - embedded SQLite
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "TOKEN_SECRET"); ok && v != "" {
			c.TokenSecret = v
		}

		return applyDatabaseEnv(prefix, c)
	}
}

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port != "" {
			c.Port = port
		}
		return nil
	}
}

// WithEnvironment sets the runtime environment (development, production,
// testing).
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env != "" {
			c.Environment = env
		}
		return nil
	}
}

// WithTokenSecret sets the HMAC secret used to sign bearer tokens.
func WithTokenSecret(secret string) Option {
	return func(c *ServerConfig) error {
		if secret != "" {
			c.TokenSecret = secret
		}
		return nil
	}
}

// WithDatabaseURL selects the store from a URL, using the same scheme
// detection as WithEnv.
func WithDatabaseURL(dbURL string) Option {
	return func(c *ServerConfig) error {
		return applyDatabaseURL(c, dbURL)
	}
}

// applyDatabaseEnv detects the database type from the URL scheme
func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")
	if !hasURL {
		return nil
	}
	return applyDatabaseURL(c, dbURL)
}

// applyDatabaseURL detects the database type from the URL scheme
func applyDatabaseURL(c *ServerConfig, dbURL string) error {
	if dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		c.DatabaseType = "sqlite"
		c.DatabaseURL = path
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://...')", dbURL)
	}

	return nil
}

func lookupEnv(prefix, key string) (string, bool) {
	if prefix != "" {
		key = prefix + "_" + key
	}
	return os.LookupEnv(key)
}
