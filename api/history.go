package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaguaretech/builder/models"
	"github.com/yaguaretech/builder/workspace"
)

// HistoryEntry is a history item with its age rendered for the sidebar
type HistoryEntry struct {
	models.HistoryItem
	Age string `json:"age"`
}

// GetHistory handles GET /api/history
func (h *Handlers) GetHistory(c *gin.Context) {
	now := time.Now()
	items := h.server.Workspace().History()

	entries := make([]HistoryEntry, len(items))
	for i, item := range items {
		entries[i] = HistoryEntry{HistoryItem: item, Age: workspace.RelativeAge(item.Timestamp, now)}
	}
	RespondList(c, entries)
}

// SelectHistory handles POST /api/history/:id/select
func (h *Handlers) SelectHistory(c *gin.Context) {
	item, err := h.server.Workspace().SelectHistory(c.Param("id"))
	if errors.Is(err, workspace.ErrHistoryNotFound) {
		RespondNotFound(c, "History item not found")
		return
	}
	if err != nil {
		RespondInternalError(c, "Failed to select history item")
		return
	}
	RespondData(c, item)
}
