package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Data directory
	DataDir string

	// Database
	DatabasePath string

	// Built frontend bundle served at /
	FrontendDir string

	// Session store: "sqlite" or "memory"
	SessionStore string
	SessionTTL   time.Duration

	// Generation
	Generator       string // "mock" or "openai"
	MockDelay       time.Duration
	GenerateTimeout time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// File tree baseline: "default" or "none"
	TreeBaseline string

	// GitHub OAuth settings
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURI  string
	GitHubAPIBaseURL   string

	// Debug settings
	LogLevel     string
	DBLogQueries bool
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

// load reads configuration from environment variables, after merging a .env
// file from the working directory if one exists
func load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("BUILDER_DATA_DIR", "./data")

	return &Config{
		// Server
		Port: getEnvInt("PORT", 8080),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		// Data
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "builder.sqlite"),
		FrontendDir:  getEnv("BUILDER_FRONTEND_DIR", "frontend/dist"),
		SessionStore: getEnv("BUILDER_SESSION_STORE", "sqlite"),
		SessionTTL:   getEnvDuration("BUILDER_SESSION_TTL", 30*24*time.Hour),

		// Generation
		Generator:       getEnv("BUILDER_GENERATOR", "mock"),
		MockDelay:       getEnvDuration("BUILDER_MOCK_DELAY", 3*time.Second),
		GenerateTimeout: getEnvDuration("BUILDER_GENERATE_TIMEOUT", 60*time.Second),

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		TreeBaseline: getEnv("BUILDER_TREE_BASELINE", "default"),

		// GitHub
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubRedirectURI:  getEnv("GITHUB_REDIRECT_URI", ""),
		GitHubAPIBaseURL:   getEnv("GITHUB_API_BASE_URL", "https://api.github.com"),

		// Debug
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DBLogQueries: getEnv("DB_LOG_QUERIES", "") == "1",
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// UseRealOAuth reports whether a GitHub OAuth app is configured.
// Without a client secret the callback falls back to the stub exchange.
func (c *Config) UseRealOAuth() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
