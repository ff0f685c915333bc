package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all runtime settings read from the environment.
type Config struct {
	Port         string
	DatabasePath string
	StaticDir    string

	TMDBAPIKey  string
	TMDBBaseURL string

	AuthSecret string
	AppURL     string
	AppEnv     string

	ResendAPIKey string
	EmailFrom    string

	LogLevel string
	LogFile  string

	CORSOrigins []string

	ContentLocale string
	RowPageCap    int
	RowMinCount   int

	// parse errors from malformed numeric settings, reported by Validate
	parseErrs []error
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "./reelshelf.db"),
		StaticDir:     getEnv("STATIC_DIR", "./web/dist"),
		TMDBAPIKey:    getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		AuthSecret:    getEnv("AUTH_SECRET", ""),
		AppURL:        strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		AppEnv:        getEnv("APP_ENV", EnvProduction),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		EmailFrom:     getEnv("EMAIL_FROM", "Reelshelf <login@reelshelf.local>"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "")),
		ContentLocale: getEnv("CONTENT_LOCALE", "en-US"),
	}
	cfg.RowPageCap = cfg.getEnvInt("CONTENT_ROW_PAGE_CAP", 10)
	cfg.RowMinCount = cfg.getEnvInt("CONTENT_ROW_MIN_COUNT", 20)

	return cfg, nil
}

// Validate reports missing or malformed required settings.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)
	if c.TMDBAPIKey == "" {
		errs = append(errs, errors.New("TMDB_API_KEY environment variable is required"))
	}
	if len(c.AuthSecret) < 32 {
		errs = append(errs, errors.New("AUTH_SECRET must be at least 32 characters"))
	}
	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv))
	}
	if c.RowPageCap < 1 {
		errs = append(errs, errors.New("CONTENT_ROW_PAGE_CAP must be positive"))
	}
	if c.RowMinCount < 1 {
		errs = append(errs, errors.New("CONTENT_ROW_MIN_COUNT must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether development-only conveniences are enabled.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// SecureCookies is true when the app is served over https.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.AppURL, "https://")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
