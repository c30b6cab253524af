// Package config loads service settings from environment variables, with a
// local .env file honored for development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database holds the connection settings of one PostgreSQL store.
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Hidro is the hydrological data warehouse (inventory, series,
	// discharge summaries, rating curves).
	Hidro Database
	// Cplar is the GIS-backed auxiliary database (hidro-referenced
	// topology, geospatial layers, RHNR scenarios).
	Cplar Database

	// ResultsPath is the SQLite file holding inventory snapshots, raw
	// criterion values, and score records.
	ResultsPath string

	// TablesPath points at a JSON file of classification tables. Empty
	// selects the built-in defaults.
	TablesPath string

	// Scenario selects the active reference-network scenario (1 or 2).
	Scenario int

	// SeriesFailureThreshold is the tolerated fraction of missing days per
	// adequate year in the series-extent criterion.
	SeriesFailureThreshold float64
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	scenario, err := parseInt("RHNR_SCENARIO", 1)
	if err != nil {
		return nil, err
	}
	if scenario != 1 && scenario != 2 {
		return nil, errors.New("RHNR_SCENARIO must be 1 or 2")
	}

	threshold, err := parseFloat("SERIES_FAILURE_THRESHOLD", 0.10)
	if err != nil {
		return nil, err
	}
	if threshold < 0 || threshold >= 1 {
		return nil, errors.New("SERIES_FAILURE_THRESHOLD must be in [0, 1)")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		Hidro:           loadDatabase("HIDRO", "hidro_dw"),
		Cplar:           loadDatabase("CPLAR", "cplar"),
		ResultsPath:     envOrDefault("RESULTS_PATH", "data/rhnr_scoring.db"),
		TablesPath:      os.Getenv("TABLES_PATH"),

		Scenario:               scenario,
		SeriesFailureThreshold: threshold,
	}

	if cfg.Hidro.Password == "" {
		return nil, errors.New("HIDRO_DB_PASSWORD is required")
	}
	if cfg.Cplar.Password == "" {
		return nil, errors.New("CPLAR_DB_PASSWORD is required")
	}
	if cfg.ResultsPath == "" {
		return nil, errors.New("RESULTS_PATH is required")
	}

	return cfg, nil
}

func loadDatabase(prefix, defaultName string) Database {
	return Database{
		Host:     envOrDefault(prefix+"_DB_HOST", "localhost"),
		Port:     envOrDefault(prefix+"_DB_PORT", "5432"),
		User:     envOrDefault(prefix+"_DB_USER", "postgres"),
		Password: os.Getenv(prefix + "_DB_PASSWORD"),
		Name:     envOrDefault(prefix+"_DB_NAME", defaultName),
		SSLMode:  envOrDefault(prefix+"_DB_SSLMODE", "disable"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
