package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port         string
	Env          string
	ClientURL    string
	JWTSecret    string
	TokenTTL     time.Duration
	DataBackend  string
	DatabaseURL  string
	SQLiteDBPath string
}

// DevMode reports whether error details may be exposed to API callers.
func (c Config) DevMode() bool {
	return c.Env == "development"
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("APP_ENV", "development"),
		ClientURL:    getEnv("CLIENT_URL", "http://localhost:3000"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		DataBackend:  getEnv("DATA_BACKEND", BackendPostgres),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "spendwise.db"),
	}

	switch cfg.Env {
	case "development", "production", "test":
	default:
		log.Fatalf("APP_ENV must be development, production or test, got %q", cfg.Env)
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ttl := getEnv("TOKEN_TTL", "720h")
	d, err := time.ParseDuration(ttl)
	if err != nil || d <= 0 {
		log.Fatalf("TOKEN_TTL must be a positive duration, got %q", ttl)
	}
	cfg.TokenTTL = d

	switch cfg.DataBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL is required")
		}
	case BackendSQLite:
	default:
		log.Fatalf("DATA_BACKEND must be postgres or sqlite, got %q", cfg.DataBackend)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
