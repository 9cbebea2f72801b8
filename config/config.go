package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all runtime configuration. Everything has a sane local
// default so the binaries run with no environment at all.
type AppConfig struct {
	Port        int
	DataDir     string
	Season      string
	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and a .env file if
// one is present. godotenv never overrides variables already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:        8080,
		DataDir:     "data",
		Season:      "25FW",
		LogLevel:    "info",
		Environment: "development",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, &InvalidVarError{Name: "PORT", Value: portStr, Err: err}
		}
		cfg.Port = port
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if season := os.Getenv("SEASON"); season != "" {
		cfg.Season = season
	}
	if level := strings.ToLower(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if env := strings.ToLower(os.Getenv("ENVIRONMENT")); env != "" {
		cfg.Environment = env
	}
	return cfg, nil
}

// InvalidVarError reports an environment variable that failed to parse.
type InvalidVarError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidVarError) Error() string {
	return "invalid " + e.Name + " value " + strconv.Quote(e.Value) + ": " + e.Err.Error()
}

func (e *InvalidVarError) Unwrap() error { return e.Err }
