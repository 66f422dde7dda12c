package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the optional YAML file loaded before the environment.
const FileEnv = "DOCEDIT_CONFIG"

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Document sessions
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// Read limits
	MaxChunkSize    int `yaml:"max_chunk_size"`
	MaxNodesPerRead int `yaml:"max_nodes_per_read"`
	MaxCharsPerRead int `yaml:"max_chars_per_read"`
	ContextWindow   int `yaml:"context_window"`

	// Search
	SearchLimit        int `yaml:"search_limit"`
	SearchContextChars int `yaml:"search_context_chars"`

	// Tool latency stats
	StatsWindow time.Duration `yaml:"stats_window"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		LogLevel:             "info",
		MaxUploadBytes:       52428800, // 50MB
		SessionTTL:           1 * time.Hour,
		CleanupInterval:      5 * time.Minute,
		MaxChunkSize:         4000,
		MaxNodesPerRead:      50,
		MaxCharsPerRead:      6000,
		ContextWindow:        100,
		SearchLimit:          20,
		SearchContextChars:   40,
		StatsWindow:          1 * time.Hour,
		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DOCEDIT_CONFIG if set, then the environment. Unparseable environment
// values are ignored.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.CleanupInterval = envDuration("CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.MaxChunkSize = envInt("MAX_CHUNK_SIZE", cfg.MaxChunkSize)
	cfg.MaxNodesPerRead = envInt("MAX_NODES_PER_READ", cfg.MaxNodesPerRead)
	cfg.MaxCharsPerRead = envInt("MAX_CHARS_PER_READ", cfg.MaxCharsPerRead)
	cfg.ContextWindow = envInt("CONTEXT_WINDOW", cfg.ContextWindow)
	cfg.SearchLimit = envInt("SEARCH_LIMIT", cfg.SearchLimit)
	cfg.SearchContextChars = envInt("SEARCH_CONTEXT_CHARS", cfg.SearchContextChars)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	return cfg, nil
}

// loadFile overlays the fields set in a YAML file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.MaxChunkSize <= 0 || c.MaxNodesPerRead <= 0 || c.MaxCharsPerRead <= 0 {
		return fmt.Errorf("read limits must be positive")
	}
	if c.ContextWindow < 0 {
		return fmt.Errorf("CONTEXT_WINDOW must not be negative, got %d", c.ContextWindow)
	}
	if c.SearchLimit <= 0 || c.SearchContextChars < 0 {
		return fmt.Errorf("SEARCH_LIMIT must be positive and SEARCH_CONTEXT_CHARS not negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
