package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
	"github.com/yaguaretech/builder/workspace"
)

// GenerateResponse is the body of a successful generation
type GenerateResponse struct {
	Message models.Message           `json:"message"`
	Result  *models.GenerationResult `json:"result"`
}

// StatusResponse reports whether the chat input is enabled
type StatusResponse struct {
	Loading         bool   `json:"loading"`
	Generator       string `json:"generator"`
	ActiveHistoryID string `json:"activeHistoryId,omitempty"`
}

// Generate handles POST /api/generate
func (h *Handlers) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body")
		return
	}

	if details := validateGenerationRequest(req); len(details) > 0 {
		RespondValidationError(c, "Invalid generation options", details)
		return
	}

	msg, result, err := h.server.Workspace().Submit(c.Request.Context(), req)
	switch {
	case err == nil:
		RespondData(c, GenerateResponse{Message: msg, Result: result})
	case errors.Is(err, workspace.ErrEmptyPrompt):
		RespondBadRequest(c, "Prompt is required")
	case errors.Is(err, workspace.ErrBusy):
		RespondConflict(c, "A generation is already in progress")
	default:
		log.Warn().Err(err).Msg("generate request failed")
		RespondGenerationFailed(c, msg.Content)
	}
}

func validateGenerationRequest(req models.GenerationRequest) []ErrorDetail {
	var details []ErrorDetail
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		details = append(details, ErrorDetail{Field: "temperature", Message: "must be between 0 and 2"})
	}
	if req.MaxIterations != nil && *req.MaxIterations < 1 {
		details = append(details, ErrorDetail{Field: "max_iterations", Message: "must be at least 1"})
	}
	return details
}

// GetMessages handles GET /api/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	RespondList(c, h.server.Workspace().Messages())
}

// GetStatus handles GET /api/status
func (h *Handlers) GetStatus(c *gin.Context) {
	ws := h.server.Workspace()
	status := StatusResponse{
		Loading:   ws.Loading(),
		Generator: ws.Generator(),
	}
	if active, ok := ws.ActiveHistory(); ok {
		status.ActiveHistoryID = active.ID
	}
	RespondData(c, status)
}
