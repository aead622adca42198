package config

import (
	"os"
)

const (
	defaultDBPath = "./estimator.db"
	defaultPort   = "8080"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath   string
	Port     string
	LogLevel string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		DBPath:   os.Getenv("DB_PATH"),
		Port:     os.Getenv("PORT"),
		LogLevel: os.Getenv("LOG_LEVEL"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	return cfg
}

// IsDev reports whether the app runs in local development mode. Migrations
// are applied automatically only in dev; deployments run them explicitly.
func (c Config) IsDev() bool {
	return os.Getenv("APP_ENV") != "production"
}
