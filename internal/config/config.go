package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, shared by the terminal client
// and the local stub backend.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string

	// TokenPath is where the client persists its access token, the
	// terminal equivalent of browser local storage.
	TokenPath string

	// PassThresholdPct frames a result as pass/fail on the result screen.
	// The catalog also carries per-course passing marks that do not always
	// agree with this value; the result view keeps its own threshold and
	// deployments are expected to tune it.
	PassThresholdPct int

	// Stub backend settings (cmd/stubserver only).
	StubPort   string
	GinMode    string
	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int
	// AllowedOrigins controls CORS on the stub backend. Empty slice means
	// all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error, .env is optional

	return &Config{
		APIBaseURL:       getEnv("API_BASE_URL", "http://127.0.0.1:8000/api"),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		TokenPath:        getEnv("TOKEN_PATH", defaultTokenPath()),
		PassThresholdPct: getEnvInt("PASS_THRESHOLD_PCT", 40),
		StubPort:         getEnv("STUB_PORT", "8000"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		JWTSecret:        getEnv("JWT_SECRET", "stub-only-not-a-secret"),
		JWTExpiry:        time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		BcryptCost:       getEnvInt("BCRYPT_COST", 6),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// defaultTokenPath resolves to <user config dir>/bitbybit/credentials.json,
// falling back to a dotfile in the working directory.
func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bitbybit-credentials.json"
	}
	return filepath.Join(dir, "bitbybit", "credentials.json")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
