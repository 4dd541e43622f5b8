package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/models"
)

const (
	flashCookie     = "plm_flash"
	pendingFlashKey = "pending_flashes"
)

// addFlash queues a one-shot message for the next rendered view
func addFlash(c *gin.Context, level models.FlashLevel, message string) {
	pending, _ := c.Get(pendingFlashKey)
	flashes, _ := pending.([]models.Flash)
	c.Set(pendingFlashKey, append(flashes, models.Flash{Level: level, Message: message}))
}

// incomingFlashes decodes messages carried over from a previous redirect
func incomingFlashes(c *gin.Context) []models.Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []models.Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

// allFlashes returns unread messages from earlier requests followed by this request's
func allFlashes(c *gin.Context) []models.Flash {
	flashes := incomingFlashes(c)
	if pending, ok := c.Get(pendingFlashKey); ok {
		flashes = append(flashes, pending.([]models.Flash)...)
	}
	return flashes
}

// redirect stores every unread flash in the flash cookie and sends a 303
func redirect(c *gin.Context, location string) {
	flashes := allFlashes(c)
	if len(flashes) > 0 {
		data, _ := json.Marshal(flashes)
		setCookie(c, flashCookie, base64.RawURLEncoding.EncodeToString(data), 0)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// render writes a JSON view, consuming every unread flash
func render(c *gin.Context, payload gin.H) {
	flashes := allFlashes(c)
	if flashes == nil {
		flashes = []models.Flash{}
	}
	if _, err := c.Cookie(flashCookie); err == nil {
		setCookie(c, flashCookie, "", -1)
	}
	if payload == nil {
		payload = gin.H{}
	}
	payload["flashes"] = flashes
	payload["user"] = currentPrincipal(c)
	c.JSON(http.StatusOK, payload)
}
