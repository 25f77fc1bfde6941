package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yaguaretech/builder/filetree"
	"github.com/yaguaretech/builder/metrics"
)

// FileContent is one file opened in the code view
type FileContent struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// GetFiles handles GET /api/files
func (h *Handlers) GetFiles(c *gin.Context) {
	RespondList(c, h.server.Workspace().Files())
}

// GetFileTree handles GET /api/files/tree
func (h *Handlers) GetFileTree(c *gin.Context) {
	RespondData(c, h.server.Workspace().Tree())
}

// GetFileContent handles GET /api/files/content?path=
func (h *Handlers) GetFileContent(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		RespondBadRequest(c, "path is required")
		return
	}

	f, ok := h.server.Workspace().File(path)
	if !ok {
		RespondNotFound(c, "File not found")
		return
	}

	RespondData(c, FileContent{
		Path:     f.Path,
		Content:  f.Content,
		Language: filetree.LanguageFor(f.Path),
	})
}

// previewCSP lets the document load Tailwind from its CDN and nothing else.
// The sandbox keeps it in an opaque origin.
const previewCSP = "sandbox allow-scripts; default-src 'none'; " +
	"script-src https://cdn.tailwindcss.com 'unsafe-inline'; " +
	"style-src 'unsafe-inline'; img-src data: https:"

// GetPreview handles GET /api/preview
func (h *Handlers) GetPreview(c *gin.Context) {
	doc, template := h.server.Workspace().Preview()
	if doc == "" {
		RespondNoContent(c)
		return
	}

	metrics.RecordPreview(template)
	c.Header("Content-Security-Policy", previewCSP)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}
