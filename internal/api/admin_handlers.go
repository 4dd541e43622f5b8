package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/logging"
	"github.com/shankarium/plm/internal/models"
)

// recentLimit caps each table listing on the admin dashboard
const recentLimit = 20

// AdminDashboard handles GET /admin
func (h *Handler) AdminDashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var overview models.AdminOverview
	var err error
	if overview.Counts, err = h.db.Counts(ctx); err != nil {
		h.storeError(c, "Failed to count rows", err)
		return
	}
	if overview.RecentBriefs, err = h.db.ListBriefs(ctx, nil, recentLimit); err != nil {
		h.storeError(c, "Failed to list briefs", err)
		return
	}
	if overview.RecentConcepts, err = h.db.ListConcepts(ctx, nil, recentLimit); err != nil {
		h.storeError(c, "Failed to list concepts", err)
		return
	}
	if overview.RecentSales, err = h.db.ListSalesInfo(ctx, 0, recentLimit); err != nil {
		h.storeError(c, "Failed to list sales info", err)
		return
	}
	render(c, gin.H{"admin": overview})
}

// AdminDelete handles POST /admin/delete/:kind/:id. Deletes do not cascade.
func (h *Handler) AdminDelete(c *gin.Context) {
	kind := c.Param("kind")
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var err error
	switch kind {
	case "brief":
		err = h.db.DeleteBrief(ctx, id)
	case "concept":
		err = h.db.DeleteConcept(ctx, id)
	case "sales":
		err = h.db.DeleteSalesInfo(ctx, id)
	default:
		addFlash(c, models.FlashWarning, fmt.Sprintf("Unknown record type %q.", kind))
		redirect(c, "/admin")
		return
	}

	switch {
	case errors.Is(err, db.ErrNotFound):
		addFlash(c, models.FlashWarning, fmt.Sprintf("No %s with id %d.", kind, id))
	case err != nil:
		h.storeError(c, "Failed to delete "+kind, err)
		return
	default:
		logging.LogKV("warn", "admin delete", map[string]interface{}{
			"kind":       kind,
			"id":         id,
			"user":       actor(c),
			"request_id": c.GetString(logging.RequestIDKey),
		})
		addFlash(c, models.FlashSuccess, fmt.Sprintf("Deleted %s #%d.", kind, id))
	}
	redirect(c, "/admin")
}

// AdminClearAll handles POST /admin/clear_all. Users are kept.
func (h *Handler) AdminClearAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.db.ClearWorkflow(ctx); err != nil {
		h.storeError(c, "Failed to clear workflow data", err)
		return
	}
	logging.LogKV("warn", "admin cleared workflow tables", map[string]interface{}{
		"user":       actor(c),
		"request_id": c.GetString(logging.RequestIDKey),
	})
	addFlash(c, models.FlashSuccess, "All workflow data cleared.")
	redirect(c, "/admin")
}
