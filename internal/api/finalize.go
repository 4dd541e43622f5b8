package api

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/models"
	"github.com/shankarium/plm/internal/services"
)

// ListFinalizeQueue handles GET /pm/finalize: concepts waiting for PM-Final
func (h *Handler) ListFinalizeQueue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ready := models.ConceptStatusReadyForPM
	concepts, err := h.db.ListConcepts(ctx, &ready, 0)
	if err != nil {
		h.storeError(c, "Failed to list concepts", err)
		return
	}
	render(c, gin.H{"concepts": concepts})
}

// FinalizeForm handles GET /pm/finalize/:concept_id
func (h *Handler) FinalizeForm(c *gin.Context) {
	conceptID, ok := pathID(c, "concept_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	concept, err := h.db.GetConcept(ctx, conceptID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.storeError(c, "Failed to load concept", err)
		return
	}
	render(c, gin.H{"concept": concept, "upload_field": "final_image_file"})
}

// FinalizeConcept handles POST /pm/finalize/:concept_id. Every call appends a sales
// info row, including repeat calls on an already finalized concept.
func (h *Handler) FinalizeConcept(c *gin.Context) {
	conceptID, ok := pathID(c, "concept_id")
	if !ok {
		return
	}
	var form models.FinalizeForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, err)
		return
	}
	sales, err := salesFromForm(conceptID, &form)
	if err != nil {
		badForm(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.workflow.RequireConcept(ctx, conceptID); err != nil {
		if errors.Is(err, services.ErrConceptNotFound) {
			conceptNotFound(c, conceptID)
			return
		}
		h.storeError(c, "Failed to load concept", err)
		return
	}
	typedURL := sales.FinalPresentationImageURL
	if sales.FinalPresentationImageURL, err = h.attachment(c, "final_image_file", typedURL); err != nil {
		h.storeError(c, "Failed to store presentation image", err)
		return
	}

	if _, err := h.workflow.FinalizeConcept(ctx, sales, actor(c)); err != nil {
		h.discardUpload(c, sales.FinalPresentationImageURL, typedURL)
		if errors.Is(err, services.ErrConceptNotFound) {
			conceptNotFound(c, conceptID)
			return
		}
		h.storeError(c, "Failed to save sales info", err)
		return
	}
	addFlash(c, models.FlashSuccess, "Sales info saved. Concept is Ready for Sales.")
	redirect(c, "/sales/catalog")
}

// SalesCatalog handles GET /sales/catalog
func (h *Handler) SalesCatalog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	items, err := h.db.ListCatalog(ctx)
	if err != nil {
		h.storeError(c, "Failed to load catalog", err)
		return
	}
	render(c, gin.H{"items": items})
}
