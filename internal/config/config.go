// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings shared by the binaries.
type Config struct {
	PapersDir  string
	Port       string
	ServerMode bool // HTTP transport instead of stdio
	Watch      bool // invalidate the cache on record directory changes
	LogLevel   slog.Level

	// RecordReadRetry bounds re-reading a record that is still being written.
	RecordReadRetry time.Duration

	VectorSearch bool
	QdrantHost   string
	QdrantPort   int
	OpenAIAPIKey string
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() (*Config, error) {
	level, err := ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		PapersDir:       getEnv("PAPERS_DIR", "summary"),
		Port:            getEnv("PORT", "8080"),
		ServerMode:      getEnvBool("SERVER_MODE", false),
		Watch:           getEnvBool("WATCH_RECORDS", false),
		LogLevel:        level,
		RecordReadRetry: time.Duration(getEnvInt("RECORD_READ_RETRY_MS", 200)) * time.Millisecond,
		VectorSearch:    getEnvBool("VECTOR_SEARCH", false),
		QdrantHost:      getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:      getEnvInt("QDRANT_PORT", 6334),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
	}

	if cfg.VectorSearch && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("VECTOR_SEARCH requires OPENAI_API_KEY")
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds the text logger used by the binaries. It writes to w,
// which should be stderr because stdout carries the MCP stdio stream.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return defaultValue
}
