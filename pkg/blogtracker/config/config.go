package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker"
	"github.com/partiksingh1/blogs-tracker/pkg/blogtracker/repo/memory"
	repopg "github.com/partiksingh1/blogs-tracker/pkg/blogtracker/repo/postgres"
	reposqlite "github.com/partiksingh1/blogs-tracker/pkg/blogtracker/repo/sqlite"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		TokenSecret:  "dev-secret-change-me",
	}
}

// ServerConfig represents server configuration for the blogs-tracker service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres", "sqlite"

	// Secret for signing bearer tokens
	TokenSecret string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	if c.Environment == "production" && c.TokenSecret == defaults().TokenSecret {
		return errors.New("token_secret must be set in production")
	}

	return nil
}

// BuildService creates a Service from the configuration. The returned
// cleanup function closes whatever store was opened.
func (c *ServerConfig) BuildService(logger *slog.Logger) (blogtracker.Service, func(), error) {
	repo, cleanup, err := c.buildRepository()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	svc, err := blogtracker.New(
		blogtracker.WithRepository(repo),
		blogtracker.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return svc, cleanup, nil
}

func (c *ServerConfig) buildRepository() (blogtracker.Repository, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil

	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return repopg.NewWithPool(pool), pool.Close, nil

	case "sqlite":
		repo, err := reposqlite.Open(c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}
