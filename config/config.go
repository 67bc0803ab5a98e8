// Package config loads server configuration from environment variables
// (with optional .env file) and the slicing rules from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Kafka  KafkaConfig
	Rules  Rules
	Debug  bool
}

type ServerConfig struct {
	Addr         string
	CORSOrigins  []string
	ShutdownWait int // seconds
}

// StoreConfig selects the storage backend. Driver is "sqlite" or
// "postgres"; sqlite is the default and needs only a file path.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// Rules is the slicing rule set, loaded from RULES_PATH when set.
type Rules struct {
	// EligibleSources lists booking sources that get month slices.
	// Empty keeps the built-in default (private, airbnb).
	EligibleSources []string `yaml:"eligible_sources"`
}

// Load reads configuration from environment variables. A .env file in the
// current directory is loaded first when present; a custom path can be
// passed instead.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	shutdownWait, err := parseIntEnv("SHUTDOWN_WAIT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:         getEnvOrDefault("LISTEN_ADDR", ":8080"),
			CORSOrigins:  splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
			ShutdownWait: shutdownWait,
		},
		Store: StoreConfig{
			Driver:      getEnvOrDefault("STORE_DRIVER", "sqlite"),
			SQLitePath:  getEnvOrDefault("SQLITE_PATH", "property-engine.db"),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
		},
		Kafka: KafkaConfig{
			Enabled: os.Getenv("KAFKA_BROKERS") != "",
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	if path := os.Getenv("RULES_PATH"); path != "" {
		rules, err := LoadRules(path)
		if err != nil {
			return nil, err
		}
		cfg.Rules = *rules
	}

	return cfg, cfg.validate()
}

// LoadRules parses a YAML rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return &rules, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want sqlite or postgres)", c.Store.Driver)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
