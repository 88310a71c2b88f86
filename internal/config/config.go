package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	SupabaseURL string
	SupabaseKey string // service role key, used by the seeder only
	DatabaseURL string
	JWKSURL     string // defaults to SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins []string
	TablePrefix string
	AutoMigrate bool
	LogDir      string // empty disables file logging
	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := getEnv("JWKS_URL", "")
	if jwksURL == "" && supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   env,
		SupabaseURL:   supabaseURL,
		SupabaseKey:   getEnv("SUPABASE_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		JWKSURL:       jwksURL,
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TablePrefix:   getTablePrefix(env),
		AutoMigrate:   getEnv("AUTO_MIGRATE", defaultAutoMigrate(env)) == "true",
		LogDir:        getEnv("LOG_DIR", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", ""),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
		GeminiTimeout: getDuration("GEMINI_TIMEOUT", 60*time.Second),
	}
}

// IsProduction reports whether the server runs against production tables
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// defaultAutoMigrate creates tables on startup everywhere except production
func defaultAutoMigrate(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s") or bare seconds ("90")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if d, err := time.ParseDuration(raw + "s"); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
