package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/models"
	"github.com/shankarium/plm/internal/services"
)

// AddBriefComment handles POST /brief/:id/comments
func (h *Handler) AddBriefComment(c *gin.Context) {
	h.addComment(c, models.CommentTargetBrief, "/brief/")
}

// AddConceptComment handles POST /concept/:id/comments
func (h *Handler) AddConceptComment(c *gin.Context) {
	h.addComment(c, models.CommentTargetConcept, "/concept/")
}

func (h *Handler) addComment(c *gin.Context, target models.CommentTarget, back string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	location := fmt.Sprintf("%s%d", back, id)

	var form models.CommentForm
	if err := c.ShouldBind(&form); err != nil || strings.TrimSpace(form.Body) == "" {
		addFlash(c, models.FlashWarning, "Comment cannot be empty.")
		redirect(c, location)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	_, err := h.workflow.AddComment(ctx, target, id, actor(c), strings.TrimSpace(form.Body))
	switch {
	case errors.Is(err, services.ErrBriefNotFound):
		addFlash(c, models.FlashWarning, fmt.Sprintf("Brief #%d not found.", id))
		redirect(c, "/")
	case errors.Is(err, services.ErrConceptNotFound):
		addFlash(c, models.FlashWarning, fmt.Sprintf("Concept #%d not found.", id))
		redirect(c, "/")
	case err != nil:
		h.storeError(c, "Failed to save comment", err)
	default:
		addFlash(c, models.FlashSuccess, "Comment added.")
		redirect(c, location)
	}
}
