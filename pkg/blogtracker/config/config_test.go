package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.DatabaseType)
}

func TestLoadOptions(t *testing.T) {
	cfg, err := Load(
		WithPort("9090"),
		WithEnvironment("testing"),
		WithTokenSecret("secret"),
		WithDatabaseURL("postgres://localhost/blogs"),
	)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "testing", cfg.Environment)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "postgres://localhost/blogs", cfg.DatabaseURL)
}

func TestDatabaseURLDetection(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantType string
		wantURL  string
		wantErr  bool
	}{
		{"empty means memory", "", "memory", "", false},
		{"explicit memory", "memory", "memory", "", false},
		{"postgres scheme", "postgres://localhost/db", "postgres", "postgres://localhost/db", false},
		{"postgresql scheme", "postgresql://localhost/db", "postgres", "postgresql://localhost/db", false},
		{"sqlite scheme", "sqlite:///tmp/blogs.db", "sqlite", "/tmp/blogs.db", false},
		{"sqlite without path", "sqlite://", "", "", true},
		{"unknown scheme", "mysql://localhost/db", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithDatabaseURL(tt.url))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, cfg.DatabaseType)
			assert.Equal(t, tt.wantURL, cfg.DatabaseURL)
		})
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("ENVIRONMENT", "testing")
	t.Setenv("TOKEN_SECRET", "env-secret")
	t.Setenv("DATABASE_URL", "sqlite:///tmp/blogs.db")

	cfg, err := Load(WithEnv(""))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "testing", cfg.Environment)
	assert.Equal(t, "env-secret", cfg.TokenSecret)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "/tmp/blogs.db", cfg.DatabaseURL)
}

func TestWithEnvPrefix(t *testing.T) {
	t.Setenv("BLOGS_PORT", "4000")

	cfg, err := Load(WithEnv("BLOGS"))
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.Port)
}

func TestValidate(t *testing.T) {
	t.Run("postgres requires url", func(t *testing.T) {
		cfg := defaults()
		cfg.DatabaseType = "postgres"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production refuses default secret", func(t *testing.T) {
		cfg := defaults()
		cfg.Environment = "production"
		assert.Error(t, cfg.Validate())

		cfg.TokenSecret = "real-secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown database type", func(t *testing.T) {
		cfg := defaults()
		cfg.DatabaseType = "oracle"
		assert.Error(t, cfg.Validate())
	})
}

func TestBuildServiceMemory(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	svc, cleanup, err := cfg.BuildService(slog.Default())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, svc)
}
