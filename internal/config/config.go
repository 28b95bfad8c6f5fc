package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Path string
	}

	Seed struct {
		Users          int
		CatchesPerUser int
	}
}

func New() *Config {
	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "catalog")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database file, created on first open
	cfg.DB.Path = getEnvDefault("CATALOG_DB_PATH", "data/fishonary.db")

	// Demo seeding
	cfg.Seed.Users = getEnvInt("SEED_USERS", 3)
	cfg.Seed.CatchesPerUser = getEnvInt("SEED_CATCHES_PER_USER", 4)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
