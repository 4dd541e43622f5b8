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

// briefFormFields describes the brief form for clients rendering it
var briefFormFields = []string{
	"project_no", "season", "brand", "subcategory", "design", "target_mrp", "market_focus",
	"expected_sales_qty", "sample_adaptation_pct", "color_requirements", "pm_general_remarks",
	"pm_reference_image_url",
}

// ListBriefs handles GET /pm/briefs
func (h *Handler) ListBriefs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	briefs, err := h.db.ListBriefs(ctx, nil, 0)
	if err != nil {
		h.storeError(c, "Failed to list briefs", err)
		return
	}
	render(c, gin.H{"briefs": briefs})
}

// NewBriefForm handles GET /pm/briefs/new
func (h *Handler) NewBriefForm(c *gin.Context) {
	regions := make([]string, len(models.RegionCodes))
	for i, code := range models.RegionCodes {
		regions[i] = "stateqty_" + code
	}
	render(c, gin.H{"form": gin.H{
		"fields":       briefFormFields,
		"regions":      regions,
		"upload_field": "pm_reference_image_file",
	}})
}

// CreateBrief handles POST /pm/briefs/new
func (h *Handler) CreateBrief(c *gin.Context) {
	var form models.BriefForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, err)
		return
	}
	brief, err := briefFromForm(&form)
	if err != nil {
		badForm(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	typedURL := brief.PMReferenceImageURL
	if brief.PMReferenceImageURL, err = h.attachment(c, "pm_reference_image_file", typedURL); err != nil {
		h.storeError(c, "Failed to store reference image", err)
		return
	}
	if _, err := h.workflow.CreateBrief(ctx, brief, actor(c)); err != nil {
		h.discardUpload(c, brief.PMReferenceImageURL, typedURL)
		h.storeError(c, "Failed to save brief", err)
		return
	}
	addFlash(c, models.FlashSuccess, "Brief saved (Draft).")
	redirect(c, "/pm/briefs")
}

// SubmitBrief handles POST /pm/briefs/submit/:id
func (h *Handler) SubmitBrief(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	err := h.workflow.SubmitBrief(ctx, id, actor(c))
	switch {
	case errors.Is(err, services.ErrBriefNotFound):
		addFlash(c, models.FlashWarning, fmt.Sprintf("Brief #%d not found.", id))
	case err != nil:
		h.storeError(c, "Failed to submit brief", err)
		return
	default:
		addFlash(c, models.FlashSuccess, "Brief submitted to NPD.")
	}
	redirect(c, "/pm/briefs")
}

// GetBrief handles GET /brief/:id. A missing brief renders as null.
func (h *Handler) GetBrief(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	detail := models.BriefDetail{}
	brief, err := h.db.GetBrief(ctx, id)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		h.storeError(c, "Failed to load brief", err)
		return
	}
	detail.Brief = brief
	if detail.Concepts, err = h.db.ListConceptsForBrief(ctx, id); err != nil {
		h.storeError(c, "Failed to load concepts", err)
		return
	}
	if detail.Comments, err = h.db.ListComments(ctx, models.CommentTargetBrief, id); err != nil {
		h.storeError(c, "Failed to load comments", err)
		return
	}
	render(c, gin.H{"brief": detail.Brief, "concepts": detail.Concepts, "comments": detail.Comments})
}

// ListSubmittedBriefs handles GET /npd/briefs
func (h *Handler) ListSubmittedBriefs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	submitted := models.BriefStatusSubmitted
	briefs, err := h.db.ListBriefs(ctx, &submitted, 0)
	if err != nil {
		h.storeError(c, "Failed to list briefs", err)
		return
	}
	render(c, gin.H{"briefs": briefs})
}

// briefNotFound is the precondition failure shared by concept creation paths
func briefNotFound(c *gin.Context, id int64) {
	addFlash(c, models.FlashWarning, fmt.Sprintf("Brief #%d not found.", id))
	redirect(c, "/npd/briefs")
}
