package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shankarium/plm/internal/models"
)

const conceptColumns = `c.id, c.brief_id, c.nd_no, c.proposed_mrp, c.upper_material, c.lining, c.insole,
	c.outsole, c.construction, c.size_curve, c.colorways, c.article_image_url, c.brand_suggestion,
	c.npd_remarks, c.status, c.created_by, c.created_at, c.updated_at`

// briefSummaryColumns is the outer-joined parent projection; b.id is NULL for orphans
const briefSummaryColumns = `b.id, COALESCE(b.project_no, ''), COALESCE(b.season, ''), COALESCE(b.brand, ''),
	COALESCE(b.subcategory, ''), COALESCE(b.design, ''), b.target_mrp`

const conceptJoin = ` FROM concepts c LEFT JOIN market_briefs b ON b.id = c.brief_id`

func conceptDest(c *models.Concept) []any {
	return []any{
		&c.ID, &c.BriefID, &c.NDNo, &c.ProposedMRP, &c.UpperMaterial, &c.Lining, &c.Insole,
		&c.Outsole, &c.Construction, &c.SizeCurve, &c.Colorways, &c.ArticleImageURL, &c.BrandSuggestion,
		&c.NPDRemarks, &c.Status, &c.CreatedBy, scanTime(&c.CreatedAt), scanTime(&c.UpdatedAt),
	}
}

// briefSummaryScan collects the joined parent columns and attaches them when present
type briefSummaryScan struct {
	id      sql.NullInt64
	summary models.BriefSummary
}

func (s *briefSummaryScan) dest() []any {
	return []any{
		&s.id, &s.summary.ProjectNo, &s.summary.Season, &s.summary.Brand,
		&s.summary.Subcategory, &s.summary.Design, &s.summary.TargetMRP,
	}
}

func (s *briefSummaryScan) attach(c *models.Concept) {
	if !s.id.Valid {
		c.Brief = nil
		return
	}
	summary := s.summary
	summary.ID = s.id.Int64
	c.Brief = &summary
}

func scanConceptWithBrief(row rowScanner) (*models.Concept, error) {
	var c models.Concept
	var bs briefSummaryScan
	if err := row.Scan(append(conceptDest(&c), bs.dest()...)...); err != nil {
		return nil, err
	}
	bs.attach(&c)
	return &c, nil
}

// CreateConcept inserts a concept and returns its id
func (q *Queries) CreateConcept(ctx context.Context, c *models.Concept) (int64, error) {
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts

	var id int64
	err := q.queryRow(ctx, `INSERT INTO concepts (brief_id, nd_no, proposed_mrp, upper_material, lining, insole,
		outsole, construction, size_curve, colorways, article_image_url, brand_suggestion, npd_remarks,
		status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		c.BriefID, c.NDNo, c.ProposedMRP, c.UpperMaterial, c.Lining, c.Insole,
		c.Outsole, c.Construction, c.SizeCurve, c.Colorways, c.ArticleImageURL, c.BrandSuggestion, c.NPDRemarks,
		string(c.Status), c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert concept: %w", err)
	}
	c.ID = id
	return id, nil
}

// GetConcept returns a concept with its parent brief summary, or ErrNotFound
func (q *Queries) GetConcept(ctx context.Context, id int64) (*models.Concept, error) {
	c, err := scanConceptWithBrief(q.queryRow(ctx,
		"SELECT "+conceptColumns+", "+briefSummaryColumns+conceptJoin+" WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("concept %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load concept %d: %w", id, err)
	}
	return c, nil
}

// ConceptExists reports whether a concept row exists
func (q *Queries) ConceptExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := q.queryRow(ctx, "SELECT COUNT(*) FROM concepts WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check concept %d: %w", id, err)
	}
	return n > 0, nil
}

// ListConcepts returns concepts newest first with their parent summaries.
// A nil status lists every concept; limit <= 0 means no limit.
func (q *Queries) ListConcepts(ctx context.Context, status *models.ConceptStatus, limit int) ([]models.Concept, error) {
	query := "SELECT " + conceptColumns + ", " + briefSummaryColumns + conceptJoin
	var args []any
	if status != nil {
		query += " WHERE c.status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY c.id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return q.listConcepts(ctx, query, args...)
}

// ListConceptsForBrief returns the concepts answering one brief, newest first
func (q *Queries) ListConceptsForBrief(ctx context.Context, briefID int64) ([]models.Concept, error) {
	return q.listConcepts(ctx,
		"SELECT "+conceptColumns+", "+briefSummaryColumns+conceptJoin+" WHERE c.brief_id = ? ORDER BY c.id DESC", briefID)
}

func (q *Queries) listConcepts(ctx context.Context, query string, args ...any) ([]models.Concept, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	defer rows.Close()

	concepts := make([]models.Concept, 0)
	for rows.Next() {
		c, err := scanConceptWithBrief(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan concept: %w", err)
		}
		concepts = append(concepts, *c)
	}
	return concepts, rows.Err()
}

// SetConceptStatus writes a concept's status and refreshes updated_at
func (q *Queries) SetConceptStatus(ctx context.Context, id int64, status models.ConceptStatus) error {
	res, err := q.exec(ctx, "UPDATE concepts SET status = ?, updated_at = ? WHERE id = ?", string(status), now(), id)
	if err != nil {
		return fmt.Errorf("failed to update concept %d status: %w", id, err)
	}
	return requireAffected(res, "concept", id)
}

// DeleteConcept hard-deletes a concept. Its sales info rows are left in place.
func (q *Queries) DeleteConcept(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, "DELETE FROM concepts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete concept %d: %w", id, err)
	}
	return requireAffected(res, "concept", id)
}

// ListCatalog returns every Ready_for_Sales concept newest first, each paired with the
// sales info row carrying the highest id for that concept (nil when none exists).
func (q *Queries) ListCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	rows, err := q.query(ctx, "SELECT "+conceptColumns+", "+briefSummaryColumns+", "+salesJoinColumns+
		conceptJoin+
		` LEFT JOIN sales_info s ON s.id = (SELECT MAX(s2.id) FROM sales_info s2 WHERE s2.concept_id = c.id)
		WHERE c.status = ? ORDER BY c.id DESC`,
		string(models.ConceptStatusReadyForSales))
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	defer rows.Close()

	items := make([]models.CatalogItem, 0)
	for rows.Next() {
		var item models.CatalogItem
		var bs briefSummaryScan
		var ss salesScan
		dest := append(conceptDest(&item.Concept), bs.dest()...)
		dest = append(dest, ss.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		bs.attach(&item.Concept)
		item.Sales = ss.result()
		items = append(items, item)
	}
	return items, rows.Err()
}
