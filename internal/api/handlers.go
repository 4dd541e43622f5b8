package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/auth"
	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/logging"
	"github.com/shankarium/plm/internal/models"
	"github.com/shankarium/plm/internal/services"
	"github.com/shankarium/plm/internal/storage"
)

// requestTimeout bounds the store work of a single request
const requestTimeout = 10 * time.Second

// Handler holds the dependencies for API handlers
type Handler struct {
	db       *db.Database
	workflow *services.Workflow
	uploads  storage.Uploader
	issuer   *auth.Issuer
}

// NewHandler creates a new handler instance
func NewHandler(database *db.Database, workflow *services.Workflow, uploads storage.Uploader, issuer *auth.Issuer) *Handler {
	return &Handler{
		db:       database,
		workflow: workflow,
		uploads:  uploads,
		issuer:   issuer,
	}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "not initialized"})
		return
	}
	if err := h.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "plm",
		"database":  string(h.db.Dialect),
		"timestamp": time.Now().UTC(),
	})
}

// Home handles GET /. It lists the pages the caller's role may open.
func (h *Handler) Home(c *gin.Context) {
	links := make([]gin.H, 0)
	if p := currentPrincipal(c); p != nil {
		for _, r := range h.Routes() {
			if r.Method == http.MethodGet && r.Roles != nil && r.Listed && r.Roles.Allows(p.Role) {
				links = append(links, gin.H{"path": r.Path, "title": r.Title})
			}
		}
	}
	render(c, gin.H{"links": links})
}

// LoginPage handles GET /login
func (h *Handler) LoginPage(c *gin.Context) {
	render(c, gin.H{"roles": models.AllRoles})
}

// Login handles POST /login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		addFlash(c, models.FlashWarning, "Username and password are required.")
		redirect(c, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.db.GetUserByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.storeError(c, "login lookup failed", err)
		return
	}
	if user == nil || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		logging.LogKV("info", "login rejected", map[string]interface{}{
			"username":   req.Username,
			"request_id": c.GetString(logging.RequestIDKey),
		})
		addFlash(c, models.FlashWarning, "Invalid username or password.")
		redirect(c, "/login")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create session",
			Message: err.Error(),
		})
		return
	}
	setCookie(c, sessionCookie, token, 0)
	addFlash(c, models.FlashSuccess, "Logged in as "+string(user.Role))
	redirect(c, "/")
}

// Logout handles GET /logout
func (h *Handler) Logout(c *gin.Context) {
	setCookie(c, sessionCookie, "", -1)
	c.Set(principalKey, nil)
	addFlash(c, models.FlashInfo, "Logged out")
	redirect(c, "/")
}

// storeError logs a failed store call and answers 500
func (h *Handler) storeError(c *gin.Context, msg string, err error) {
	logging.LogKV("error", msg, map[string]interface{}{
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user":       actor(c),
		"request_id": c.GetString(logging.RequestIDKey),
		"error":      err.Error(),
	})
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "Internal server error",
		Message: msg,
	})
}
