package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/yaguaretech/builder/auth"
	"github.com/yaguaretech/builder/db"
	"github.com/yaguaretech/builder/filetree"
	"github.com/yaguaretech/builder/generator"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/metrics"
	"github.com/yaguaretech/builder/notifications"
	"github.com/yaguaretech/builder/session"
	"github.com/yaguaretech/builder/workspace"
)

// pruneInterval is how often expired session values are removed
const pruneInterval = time.Hour

// Server owns and coordinates all application components
type Server struct {
	cfg *Config

	// Components (owned by server)
	database     *sql.DB
	sessions     session.Store
	pruner       *db.SessionStore
	notifService *notifications.Service
	generator    generator.Client
	exchanger    auth.Exchanger
	workspace    *workspace.Workspace

	// Shutdown context - cancelled when server is shutting down.
	// Long-running handlers (SSE) should listen to this.
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	// HTTP
	router *gin.Engine
	http   *http.Server
}

// New creates a new server with all components initialized
func New(cfg *Config) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:            cfg,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	// 1. Session store
	switch cfg.SessionStore {
	case SessionStoreMemory:
		log.Info().Msg("using in-memory session store")
		s.sessions = session.NewMemoryStore()
	case SessionStoreSQLite, "":
		log.Info().Msg("initializing database")
		database, err := db.Open(cfg.DatabasePath)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.database = database
		s.pruner = db.NewSessionStore(database)
		s.sessions = s.pruner
	default:
		cancel()
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}

	// 2. Notifications service
	log.Info().Msg("initializing notifications service")
	s.notifService = notifications.NewService()

	// 3. Generator and GitHub exchange
	gen, err := generator.New(cfg.App)
	if err != nil {
		s.closeDatabase()
		cancel()
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	s.generator = gen
	s.exchanger = auth.New(cfg.App)

	// 4. Workspace
	baseline, err := filetree.LoadBaseline(cfg.TreeBaseline)
	if err != nil {
		s.closeDatabase()
		cancel()
		return nil, fmt.Errorf("failed to load tree baseline: %w", err)
	}
	s.workspace = workspace.New(workspace.Options{
		Client:   s.generator,
		Notifier: s.notifService,
		Baseline: baseline,
		Timeout:  cfg.GenerateTimeout,
	})

	// 5. HTTP router
	s.setupRouter()
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.StdErrorLogger(), // Route Go's internal HTTP errors through zerolog
	}

	log.Info().
		Str("generator", s.generator.Name()).
		Str("github", s.exchanger.Name()).
		Msg("server initialized successfully")
	return s, nil
}

// setupRouter creates and configures the Gin router
func (s *Server) setupRouter() {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(log.GinLogger())
	s.router.Use(metrics.Middleware())

	// CORS for development
	if s.cfg.IsDevelopment() {
		s.router.Use(s.corsMiddleware())
	}

	// Security headers (production only)
	if !s.cfg.IsDevelopment() {
		s.router.Use(s.securityHeadersMiddleware())
	}

	// Gzip compression (skip SSE, it needs streaming)
	s.router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/api/notifications/stream",
	})))

	s.router.SetTrustedProxies(nil)

	s.router.GET("/.well-known/*path", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes are added by the caller (main.go) to avoid import cycles
}

// corsMiddleware handles CORS for development environments
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:5173": true,
			"http://localhost:8080": true,
		}

		if allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// securityHeadersMiddleware adds security headers for production
func (s *Server) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("X-Content-Type-Options", "nosniff")
		// The preview iframe is same-origin
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// Start runs the HTTP server until it is shut down
func (s *Server) Start() error {
	log.Info().
		Str("addr", s.http.Addr).
		Str("env", s.cfg.Env).
		Msg("HTTP server starting")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RunSessionPruner removes expired session values every hour until ctx is
// done. It returns immediately for the in-memory store.
func (s *Server) RunSessionPruner(ctx context.Context) error {
	if s.pruner == nil || s.cfg.SessionTTL <= 0 {
		return nil
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		s.pruneSessions(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Server) pruneSessions(ctx context.Context) {
	n, err := s.pruner.Prune(ctx, time.Now().Add(-s.cfg.SessionTTL))
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("session prune failed")
		}
		return
	}
	metrics.RecordSessionsPruned(n)
	if n > 0 {
		log.Info().Int64("values", n).Msg("pruned expired session values")
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// Signal long-running handlers (SSE) before closing the HTTP server
	s.shutdownCancel()

	// Close notification service to cleanly disconnect SSE clients
	s.notifService.Shutdown()

	if err := s.http.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	if err := s.closeDatabase(); err != nil {
		log.Error().Err(err).Msg("database close error")
		return err
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

func (s *Server) closeDatabase() error {
	if s.database == nil {
		return nil
	}
	err := s.database.Close()
	s.database = nil
	return err
}

// Component accessors for API handlers
func (s *Server) Config() *Config                       { return s.cfg }
func (s *Server) Sessions() session.Store               { return s.sessions }
func (s *Server) Notifications() *notifications.Service { return s.notifService }
func (s *Server) Exchanger() auth.Exchanger             { return s.exchanger }
func (s *Server) Workspace() *workspace.Workspace       { return s.workspace }
func (s *Server) Router() *gin.Engine                   { return s.router }
func (s *Server) ShutdownContext() context.Context      { return s.shutdownCtx }
