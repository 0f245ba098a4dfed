package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Parser    ParserConfig
	Discovery DiscoveryConfig
	Workers   WorkerConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ParserConfig bounds a single tokenizer invocation.
type ParserConfig struct {
	MaxBytes  int
	Timeout   time.Duration
	RulesPath string // empty means built-in Email/Password rules
}

// DiscoveryConfig controls where and how vault files are found.
type DiscoveryConfig struct {
	Roots      []string // empty means platform Flash Player dirs
	NameFilter string
	Debounce   time.Duration // watch-mode coalescing
}

// WorkerConfig sizes the parse queue.
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "sol-viewer.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Parser: ParserConfig{
			MaxBytes:  getEnvAsInt("SOL_MAX_BYTES", 1024*100),
			Timeout:   getEnvAsDuration("PARSE_TIMEOUT", 5*time.Second),
			RulesPath: getEnv("RULES_PATH", ""),
		},
		Discovery: DiscoveryConfig{
			Roots:      splitList(getEnv("SOL_ROOTS", "")),
			NameFilter: getEnv("SOL_NAME_FILTER", "ptd"),
			Debounce:   getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
		Workers: WorkerConfig{
			Workers:        getEnvAsInt("PARSE_WORKERS", 4),
			QueueSize:      getEnvAsInt("PARSE_QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PARSE_PROCESS_TIMEOUT", 30*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Parser.MaxBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "SOL_MAX_BYTES must be positive", ErrInvalidInput)
	}
	if c.Parser.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "PARSE_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Workers.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "PARSE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
