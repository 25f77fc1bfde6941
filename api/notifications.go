package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/metrics"
	"github.com/yaguaretech/builder/notifications"
)

var notifLogger = log.With("api.notifications")

const heartbeatInterval = 30 * time.Second

// NotificationStream handles GET /api/notifications/stream (SSE)
func (h *Handlers) NotificationStream(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	events, unsubscribe := h.server.Notifications().Subscribe()
	defer unsubscribe()

	done := metrics.SSEConnected()
	defer done()

	// Send initial connected event
	sendSSEEvent(c, notifications.Event{
		Type:      notifications.EventConnected,
		Timestamp: time.Now().UnixMilli(),
	})
	w.Flush()

	notifLogger.Debug().Msg("client connected to notification stream")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	sid := c.GetString(sessionIDKey)
	shutdown := h.server.ShutdownContext()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if !event.VisibleTo(sid) {
				continue
			}
			sendSSEEvent(c, event)
			w.Flush()

		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			w.Flush()

		case <-c.Request.Context().Done():
			notifLogger.Debug().Msg("client disconnected from notification stream")
			return

		case <-shutdown.Done():
			return
		}
	}
}

func sendSSEEvent(c *gin.Context, event notifications.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		notifLogger.Error().Err(err).Msg("failed to marshal event")
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
}
