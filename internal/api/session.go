package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/auth"
)

const (
	sessionCookie = "plm_session"
	principalKey  = "principal"
)

// setCookie writes an HttpOnly cookie scoped to the whole site. maxAge < 0 deletes it.
func setCookie(c *gin.Context, name, value string, maxAge int) {
	secure, _ := c.Get(secureCookiesKey)
	isSecure, _ := secure.(bool)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", isSecure, true)
}

// sessionToken reads the session from the cookie, falling back to a Bearer header
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// currentPrincipal returns the authenticated user, or nil
func currentPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

// actor is the username recorded on writes
func actor(c *gin.Context) string {
	if p := currentPrincipal(c); p != nil {
		return p.Username
	}
	return ""
}
