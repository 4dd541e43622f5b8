package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/models"
	"github.com/shankarium/plm/internal/services"
)

// ListConcepts handles GET /npd/concepts
func (h *Handler) ListConcepts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	concepts, err := h.db.ListConcepts(ctx, nil, 0)
	if err != nil {
		h.storeError(c, "Failed to list concepts", err)
		return
	}
	render(c, gin.H{"concepts": concepts})
}

// NewConceptForm handles GET /npd/concepts/new/:brief_id
func (h *Handler) NewConceptForm(c *gin.Context) {
	briefID, ok := pathID(c, "brief_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	brief, err := h.db.GetBrief(ctx, briefID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.storeError(c, "Failed to load brief", err)
		return
	}
	render(c, gin.H{"brief": brief, "upload_field": "article_image_file"})
}

// CreateConcept handles POST /npd/concepts/new/:brief_id
func (h *Handler) CreateConcept(c *gin.Context) {
	briefID, ok := pathID(c, "brief_id")
	if !ok {
		return
	}
	var form models.ConceptForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, err)
		return
	}
	concept, err := conceptFromForm(briefID, &form)
	if err != nil {
		badForm(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	// Check before storing the upload so a missing brief leaves nothing behind.
	if err := h.workflow.RequireBrief(ctx, briefID); err != nil {
		if errors.Is(err, services.ErrBriefNotFound) {
			briefNotFound(c, briefID)
			return
		}
		h.storeError(c, "Failed to load brief", err)
		return
	}
	typedURL := concept.ArticleImageURL
	if concept.ArticleImageURL, err = h.attachment(c, "article_image_file", typedURL); err != nil {
		h.storeError(c, "Failed to store article image", err)
		return
	}

	if _, err := h.workflow.CreateConcept(ctx, concept, actor(c)); err != nil {
		h.discardUpload(c, concept.ArticleImageURL, typedURL)
		if errors.Is(err, services.ErrBriefNotFound) {
			briefNotFound(c, briefID)
			return
		}
		h.storeError(c, "Failed to save concept", err)
		return
	}
	addFlash(c, models.FlashSuccess, "Concept created and sent to PM (Ready for PM).")
	redirect(c, "/npd/concepts")
}

// GetConcept handles GET /concept/:id: the concept with its brief summary and latest
// sales info. Missing records render as null.
func (h *Handler) GetConcept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var detail models.ConceptDetail
	concept, err := h.db.GetConcept(ctx, id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.storeError(c, "Failed to load concept", err)
		return
	}
	detail.Concept = concept

	sales, err := h.db.LatestSalesInfo(ctx, id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.storeError(c, "Failed to load sales info", err)
		return
	}
	detail.Sales = sales

	if detail.Comments, err = h.db.ListComments(ctx, models.CommentTargetConcept, id); err != nil {
		h.storeError(c, "Failed to load comments", err)
		return
	}
	render(c, gin.H{"concept": detail.Concept, "sales": detail.Sales, "comments": detail.Comments})
}

func conceptNotFound(c *gin.Context, id int64) {
	addFlash(c, models.FlashWarning, fmt.Sprintf("Concept #%d not found.", id))
	redirect(c, "/pm/finalize")
}
