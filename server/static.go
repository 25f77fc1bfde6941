package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServeFrontend mounts the built frontend bundle with an SPA fallback.
// Call it after the API routes so they take precedence.
func (s *Server) ServeFrontend() {
	dir := s.cfg.FrontendDir

	// Assets with content hash (immutable, cache for 1 year)
	s.router.GET("/assets/*filepath", serveImmutableAssets(filepath.Join(dir, "assets")))

	s.router.GET("/favicon.ico", serveStaticFile(filepath.Join(dir, "favicon.ico"), "image/x-icon"))
	s.router.GET("/robots.txt", serveRobotsTxt())

	// SPA fallback: serve index.html for everything that is not an API route
	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "frontend not built")
			return
		}
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.File(index)
	})
}

// serveImmutableAssets serves assets with content hash (can be cached indefinitely)
func serveImmutableAssets(basePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filePath := c.Param("filepath")

		// Prevent path traversal
		if strings.Contains(filePath, "..") {
			c.Status(http.StatusForbidden)
			return
		}

		fullPath := filepath.Join(basePath, filePath)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			c.Status(http.StatusNotFound)
			return
		}

		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.File(fullPath)
	}
}

// serveStaticFile serves a specific static file with caching
func serveStaticFile(filePath string, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			c.Status(http.StatusNotFound)
			return
		}

		c.Header("Cache-Control", "public, max-age=86400, must-revalidate")
		if contentType != "" {
			c.Header("Content-Type", contentType)
		}
		c.File(filePath)
	}
}

// serveRobotsTxt keeps crawlers out of the API
func serveRobotsTxt() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Cache-Control", "public, max-age=86400")
		c.String(http.StatusOK, "User-agent: *\nAllow: /\nDisallow: /api/\n")
	}
}
