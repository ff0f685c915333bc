package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CONTENT_ROW_PAGE_CAP", "")
	t.Setenv("CONTENT_ROW_MIN_COUNT", "")
	t.Setenv("APP_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.RowPageCap)
	assert.Equal(t, 20, cfg.RowMinCount)
	assert.Equal(t, "http://localhost:8080", cfg.AppURL)
	assert.False(t, cfg.SecureCookies())
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	os.Unsetenv("TMDB_API_KEY")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TMDB_API_KEY=from-file\nCORS_ORIGINS=http://a.test, http://b.test\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CORS_ORIGINS")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.TMDBAPIKey)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestInvalidIntIsReportedByValidate(t *testing.T) {
	t.Setenv("CONTENT_ROW_PAGE_CAP", "ten")
	t.Setenv("CONTENT_ROW_MIN_COUNT", "")
	t.Setenv("CONTENT_LOCALE", "")
	t.Setenv("TMDB_API_KEY", "key")
	t.Setenv("AUTH_SECRET", strings.Repeat("s", 32))
	t.Setenv("APP_ENV", EnvProduction)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RowPageCap)
	assert.Equal(t, "en-US", cfg.ContentLocale)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `CONTENT_ROW_PAGE_CAP must be an integer, got "ten"`)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		AppEnv:      EnvDevelopment,
		RowPageCap:  10,
		RowMinCount: 20,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TMDB_API_KEY")
	assert.Contains(t, err.Error(), "AUTH_SECRET")

	cfg.TMDBAPIKey = "key"
	cfg.AuthSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsDevelopment())

	cfg.AppEnv = "staging"
	assert.Error(t, cfg.Validate())
}
