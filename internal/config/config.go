// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Backend selection
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// AMQP change notifications (sqlite backend only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Firestore
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// Chore roller
	RollInterval time.Duration

	// Member name resolution
	NameCacheSize     int
	NameCacheTTL      time.Duration
	NameResolverLimit int
}

func Load() *Config {
	return &Config{
		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/hearth.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "hearth"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "hearth_changes"),

		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),

		RollInterval: getEnvDuration("ROLL_INTERVAL", time.Hour),

		NameCacheSize:     getEnvInt("NAME_CACHE_SIZE", 256),
		NameCacheTTL:      getEnvDuration("NAME_CACHE_TTL", 10*time.Minute),
		NameResolverLimit: getEnvInt("NAME_RESOLVER_LIMIT", 8),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sqlite", "firestore"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "firestore" && c.FirestoreProjectID == "" {
		errors = append(errors, "Firestore project ID is required when using firestore backend")
	}
	if c.FirestoreCredentialsFile != "" {
		if _, err := os.Stat(c.FirestoreCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Firestore credentials file does not exist: %s", c.FirestoreCredentialsFile))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RollInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid roll interval %v: must be at least 1 minute", c.RollInterval))
	} else if c.RollInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid roll interval %v: must be at most 24 hours", c.RollInterval))
	}

	if c.NameCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid name cache size %d: must be at least 1", c.NameCacheSize))
	}
	if c.NameCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid name cache TTL %v: must be at least 1 second", c.NameCacheTTL))
	}
	if c.NameResolverLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid name resolver limit %d: must be at least 1", c.NameResolverLimit))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
