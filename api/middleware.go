package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yaguaretech/builder/session"
)

const sessionIDKey = "sid"

// sessionCookieMaxAge keeps the browser session for a year; stored values
// expire separately on the server
const sessionCookieMaxAge = 365 * 24 * 60 * 60

// SessionMiddleware makes sure every request carries a browser session id,
// issuing a new cookie when the browser has none
func (h *Handlers) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(session.CookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			secure := !h.server.Config().IsDevelopment()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, sid, sessionCookieMaxAge, "/", "", secure, true)
		}
		c.Set(sessionIDKey, sid)
		c.Next()
	}
}

// githubSession returns the GitHub connection of the requesting browser
func (h *Handlers) githubSession(c *gin.Context) *session.GitHubSession {
	return session.ForSession(h.server.Sessions(), c.GetString(sessionIDKey))
}
