package api

import (
	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/auth"
	"github.com/shankarium/plm/internal/logging"
	"github.com/shankarium/plm/internal/models"
)

const secureCookiesKey = "secure_cookies"

// AuthMiddleware resolves the session, when present, into a principal on the context.
// It never rejects a request; gating is done per route by Require.
func AuthMiddleware(issuer *auth.Issuer, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(secureCookiesKey, secureCookies)

		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		p, err := issuer.Parse(token)
		if err != nil {
			logging.LogKV("info", "ignoring invalid session", map[string]interface{}{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(logging.RequestIDKey),
			})
			c.Next()
			return
		}
		c.Set(principalKey, p)
		c.Set("username", p.Username)
		c.Set("role", string(p.Role))
		c.Next()
	}
}

// Require lets the request through only when the caller's role is in roles. Anonymous
// callers are sent to /login and callers with the wrong role to / with a warning; the
// handler never runs in either case.
func Require(roles auth.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := currentPrincipal(c)
		if p == nil {
			redirect(c, "/login")
			c.Abort()
			return
		}
		if !roles.Allows(p.Role) {
			logging.LogKV("warn", "role denied", map[string]interface{}{
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"user":       p.Username,
				"role":       string(p.Role),
				"request_id": c.GetString(logging.RequestIDKey),
			})
			addFlash(c, models.FlashWarning, "You do not have access to that page.")
			redirect(c, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
