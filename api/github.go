package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/metrics"
	"github.com/yaguaretech/builder/models"
	"github.com/yaguaretech/builder/session"
)

//go:embed templates/callback_error.html
var templateFS embed.FS

var callbackErrorTmpl = template.Must(template.ParseFS(templateFS, "templates/callback_error.html"))

const (
	msgMissingAuthParams = "Parámetros de autenticación faltantes"
	msgAuthFailed        = "Error al procesar la autenticación de GitHub"
)

var githubLogger = log.With("api.github")

// GitHubStatus is the connection state shown in the header
type GitHubStatus struct {
	Connected bool               `json:"connected"`
	User      *models.GitHubUser `json:"user,omitempty"`
}

// redirectURI returns the configured callback URL, or one built from the
// request when none is configured
func (h *Handlers) redirectURI(c *gin.Context) string {
	if uri := h.server.Config().GitHubRedirectURI; uri != "" {
		return uri
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + "/api/github/callback"
}

// GitHubAuthorize handles GET /api/github/authorize
func (h *Handlers) GitHubAuthorize(c *gin.Context) {
	state, err := h.githubSession(c).IssueState(c.Request.Context())
	if err != nil {
		githubLogger.Error().Err(err).Msg("failed to issue oauth state")
		RespondInternalError(c, "Failed to start GitHub authorization")
		return
	}
	c.Redirect(http.StatusFound, h.server.Exchanger().AuthorizeURL(state, h.redirectURI(c)))
}

// GitHubCallback handles GET /api/github/callback
func (h *Handlers) GitHubCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		metrics.RecordOAuthCallback("missing_params")
		renderCallbackError(c, http.StatusBadRequest, msgMissingAuthParams)
		return
	}

	ctx := c.Request.Context()
	gh := h.githubSession(c)

	if err := gh.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, session.ErrStateMismatch) {
			metrics.RecordOAuthCallback("state_mismatch")
			githubLogger.Warn().Msg("oauth state mismatch")
			renderCallbackError(c, http.StatusBadRequest, msgAuthFailed)
			return
		}
		metrics.RecordOAuthCallback("error")
		githubLogger.Error().Err(err).Msg("failed to read oauth state")
		renderCallbackError(c, http.StatusInternalServerError, msgAuthFailed)
		return
	}

	token, user, err := h.server.Exchanger().Exchange(ctx, code, h.redirectURI(c))
	if err != nil {
		metrics.RecordOAuthCallback("exchange_failed")
		githubLogger.Error().Err(err).Msg("github code exchange failed")
		renderCallbackError(c, http.StatusBadGateway, msgAuthFailed)
		return
	}

	if err := gh.Save(ctx, token, user); err != nil {
		metrics.RecordOAuthCallback("error")
		githubLogger.Error().Err(err).Msg("failed to store github session")
		renderCallbackError(c, http.StatusInternalServerError, msgAuthFailed)
		return
	}

	metrics.RecordOAuthCallback("success")
	githubLogger.Info().Str("login", user.Login).Msg("github account connected")
	h.server.Notifications().NotifyGitHubConnected(c.GetString(sessionIDKey), user.Login)
	c.Redirect(http.StatusFound, "/")
}

func renderCallbackError(c *gin.Context, status int, message string) {
	var buf bytes.Buffer
	if err := callbackErrorTmpl.Execute(&buf, struct{ Message string }{message}); err != nil {
		c.String(status, message)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// GitHubUser handles GET /api/github/user
func (h *Handlers) GitHubUser(c *gin.Context) {
	user, ok, err := h.githubSession(c).Load(c.Request.Context())
	if err != nil {
		RespondInternalError(c, "Failed to load GitHub session")
		return
	}
	if !ok {
		RespondData(c, GitHubStatus{Connected: false})
		return
	}
	RespondData(c, GitHubStatus{Connected: true, User: &user})
}

// GitHubLogout handles POST /api/github/logout
func (h *Handlers) GitHubLogout(c *gin.Context) {
	if err := h.githubSession(c).Disconnect(c.Request.Context()); err != nil {
		RespondInternalError(c, "Failed to disconnect GitHub")
		return
	}
	h.server.Notifications().NotifyGitHubDisconnected(c.GetString(sessionIDKey))
	RespondNoContent(c)
}
