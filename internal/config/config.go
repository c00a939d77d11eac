// Package config loads application configuration from environment variables.
// A .env file in the working directory is honored when present so local
// development does not require exporting every variable by hand.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Required values are enforced by must(); optional
// values fall back to defaults that match a local development setup.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port for the reports/ratings API
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign access tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	BatchSize    int    // ingestion progress reporting interval, in records
}

// Load reads configuration from the environment. A missing required variable
// is a fatal error: there is no sensible way to run without the database
// coordinates or the signing secret.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8080"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"),
		DBHost:       must("DB_HOST"),
		DBPort:       getenv("DB_PORT", "3306"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: intenv("ACCESS_TOKEN_TTL_MIN", 30),
		BcryptCost:   intenv("BCRYPT_COST", 10),
		BatchSize:    intenv("INGEST_BATCH_SIZE", 100),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intenv(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
