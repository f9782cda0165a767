// Package appconfig loads client configuration from a YAML file with
// environment-variable overrides for deploy-time values.
package appconfig

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything the game client needs to start a session.
type Config struct {
	ContentBaseURL string `yaml:"content_base_url"`
	ContentAPIKey  string `yaml:"content_api_key"`
	GatewayURL     string `yaml:"gateway_url"`

	// Transport selects the event feed: "ws" (default) or "nats".
	Transport string `yaml:"transport"`
	NatsURL   string `yaml:"nats_url"`

	TurnDurationSec int    `yaml:"turn_duration_sec"`
	LogLevel        string `yaml:"log_level"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		ContentBaseURL:  "http://localhost:8080",
		GatewayURL:      "ws://localhost:8080/ws/game",
		Transport:       "ws",
		NatsURL:         "nats://localhost:4222",
		TurnDurationSec: 20,
		LogLevel:        "info",
	}
}

// Load reads the YAML config at path (optional) and applies NAMEIT_*
// environment overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ContentBaseURL = getEnv("NAMEIT_CONTENT_URL", cfg.ContentBaseURL)
	cfg.ContentAPIKey = getEnv("NAMEIT_CONTENT_API_KEY", cfg.ContentAPIKey)
	cfg.GatewayURL = getEnv("NAMEIT_GATEWAY_URL", cfg.GatewayURL)
	cfg.Transport = getEnv("NAMEIT_TRANSPORT", cfg.Transport)
	cfg.NatsURL = getEnv("NAMEIT_NATS_URL", cfg.NatsURL)
	cfg.TurnDurationSec = getEnvAsInt("NAMEIT_TURN_DURATION_SEC", cfg.TurnDurationSec)
	cfg.LogLevel = getEnv("NAMEIT_LOG_LEVEL", cfg.LogLevel)

	if cfg.TurnDurationSec <= 0 {
		return cfg, fmt.Errorf("turn_duration_sec must be positive, got %d", cfg.TurnDurationSec)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
