package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Addr())
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 100, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app?sslmode=disable")
	t.Setenv("ANTI_DDOS_RATE_LIMIT", "5")
	t.Setenv("ANTI_DDOS_RATE_WINDOW", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("HTTP_PORT", "")
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_secret_key: from-file\nhttp_port: 8100\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 8100, cfg.HTTP.Port)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "bad algorithm", env: map[string]string{"JWT_SECRET_KEY": "s", "ALGORITHM": "RS256"}},
		{name: "bad port", env: map[string]string{"JWT_SECRET_KEY": "s", "HTTP_PORT": "70000"}},
		{name: "bad rate limit", env: map[string]string{"JWT_SECRET_KEY": "s", "ANTI_DDOS_RATE_LIMIT": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseDSNFromParts(t *testing.T) {
	d := Database{Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "pomodoro", SSLMode: "disable"}

	assert.Equal(t, "postgres://app:p%40ss@db:5432/pomodoro?sslmode=disable", d.DSN())
}

func TestLoadDatabaseSkipsServerValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DATABASE_NAME", "planner")

	d, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "planner", d.Name)
	assert.Equal(t, 10, d.MaxConcurrent)
}
