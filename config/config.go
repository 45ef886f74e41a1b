package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Data directory
	DataDir string

	// External model service
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Conversation settings
	ContextMessages int // message count above which earlier history is summarized
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}

// load reads configuration from environment variables
func load() *Config {
	return &Config{
		// Server
		Port: getEnvInt("PORT", 8765),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		// Data
		DataDir: getEnv("LANTERN_DATA_DIR", "./learning_assistant"),

		// OpenAI-compatible model endpoint (local runtimes work through BaseURL)
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Conversation
		ContextMessages: getEnvInt("LANTERN_CONTEXT_MESSAGES", 12),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// LecturesDir returns the directory holding all lecture records
func (c *Config) LecturesDir() string {
	return filepath.Join(c.DataDir, "lectures")
}

// CacheDir returns the directory holding extracted-text cache entries
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// Helper functions

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
