package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")
	api.Use(h.SessionMiddleware())

	// Chat and generation
	api.POST("/generate", h.Generate)
	api.GET("/messages", h.GetMessages)
	api.GET("/status", h.GetStatus)

	// History
	api.GET("/history", h.GetHistory)
	api.POST("/history/:id/select", h.SelectHistory)

	// Files
	api.GET("/files", h.GetFiles)
	api.GET("/files/tree", h.GetFileTree)
	api.GET("/files/content", h.GetFileContent)

	// Preview
	api.GET("/preview", h.GetPreview)

	// GitHub
	api.GET("/github/authorize", h.GitHubAuthorize)
	api.GET("/github/callback", h.GitHubCallback)
	api.GET("/github/user", h.GitHubUser)
	api.POST("/github/logout", h.GitHubLogout)

	// Notifications (SSE)
	api.GET("/notifications/stream", h.NotificationStream)
}
