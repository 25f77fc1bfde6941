package server

import (
	"time"

	"github.com/yaguaretech/builder/config"
)

// Session store backends
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreMemory = "memory"
)

// Config holds server configuration
type Config struct {
	// Server infrastructure (immutable, requires restart)
	Port int
	Host string
	Env  string // "development" or "production"

	// Paths
	DatabasePath string
	FrontendDir  string

	// Sessions
	SessionStore string
	SessionTTL   time.Duration

	// Generation
	GenerateTimeout time.Duration
	TreeBaseline    string

	// GitHub
	GitHubRedirectURI string

	// App is the full application configuration, handed to the generator
	// and OAuth factories
	App *config.Config
}

// NewConfig derives the server configuration from the application config
func NewConfig(app *config.Config) *Config {
	return &Config{
		Port:              app.Port,
		Host:              app.Host,
		Env:               app.Env,
		DatabasePath:      app.DatabasePath,
		FrontendDir:       app.FrontendDir,
		SessionStore:      app.SessionStore,
		SessionTTL:        app.SessionTTL,
		GenerateTimeout:   app.GenerateTimeout,
		TreeBaseline:      app.TreeBaseline,
		GitHubRedirectURI: app.GitHubRedirectURI,
		App:               app,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}
