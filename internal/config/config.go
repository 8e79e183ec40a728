package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Node sources
const (
	NodeSourcePostgres = "postgres"
	NodeSourceFile     = "file"
)

type Config struct {
	Port            string
	Environment     string
	DatabaseURL     string
	TablePrefix     string
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	DevUserID       string // caller identity when auth is disabled (no SUPABASE_URL)
	// Document source
	NodeSource string // postgres | file
	NodesDir   string // directory of <project>.yaml files when NodeSource=file
	// Explorer views
	ViewTTL            time.Duration // idle views are evicted after this long
	ExplorerConfigPath string        // optional override for the embedded explorer.yaml
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Auth is only enabled when a Supabase project is configured
	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        env,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		TablePrefix:        getTablePrefix(env),
		SupabaseURL:        supabaseURL,
		SupabaseJWKSURL:    jwksURL,
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DevUserID:          getEnv("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		NodeSource:         getEnv("NODE_SOURCE", NodeSourcePostgres),
		NodesDir:           getEnv("NODES_DIR", "./data"),
		ViewTTL:            getDuration("VIEW_TTL", 30*time.Minute),
		ExplorerConfigPath: getEnv("EXPLORER_CONFIG", ""),
		LogDir:             getEnv("LOG_DIR", ""),
		LogMaxFiles:        getInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate checks the combination of settings before the server starts
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Environment, validation.In("dev", "test", "prod")),
		validation.Field(&c.NodeSource, validation.Required, validation.In(NodeSourcePostgres, NodeSourceFile)),
		validation.Field(&c.DatabaseURL, validation.When(c.NodeSource == NodeSourcePostgres, validation.Required)),
		validation.Field(&c.NodesDir, validation.When(c.NodeSource == NodeSourceFile, validation.Required)),
		validation.Field(&c.ViewTTL, validation.Min(time.Minute)),
		validation.Field(&c.SupabaseURL, validation.When(c.Environment == "prod", validation.Required)),
		validation.Field(&c.DevUserID, validation.When(c.SupabaseURL == "", validation.Required)),
		validation.Field(&c.LogMaxFiles, validation.Min(1)),
	)
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
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

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid %s=%q, using %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}
