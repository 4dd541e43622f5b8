package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shankarium/plm/internal/models"
)

var regionColumns = func() []string {
	cols := make([]string, len(models.RegionCodes))
	for i, code := range models.RegionCodes {
		cols[i] = "stateqty_" + code
	}
	return cols
}()

// briefColumns is the full column list of market_briefs in scan order
var briefColumns = "id, project_no, season, brand, subcategory, design, target_mrp, market_focus, expected_sales_qty, " +
	strings.Join(regionColumns, ", ") +
	", sample_adaptation_pct, color_requirements, pm_general_remarks, pm_reference_image_url, status, created_by, created_at, updated_at"

func scanBrief(row rowScanner) (*models.Brief, error) {
	var b models.Brief
	dest := []any{
		&b.ID, &b.ProjectNo, &b.Season, &b.Brand, &b.Subcategory, &b.Design,
		&b.TargetMRP, &b.MarketFocus, &b.ExpectedSalesQty,
	}
	for _, f := range b.RegionQuantities.Fields() {
		dest = append(dest, f)
	}
	dest = append(dest,
		&b.SampleAdaptationPct, &b.ColorRequirements, &b.PMGeneralRemarks, &b.PMReferenceImageURL,
		&b.Status, &b.CreatedBy, scanTime(&b.CreatedAt), scanTime(&b.UpdatedAt),
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBrief inserts a brief and returns its id. CreatedAt/UpdatedAt are set here.
func (q *Queries) CreateBrief(ctx context.Context, b *models.Brief) (int64, error) {
	ts := now()
	b.CreatedAt, b.UpdatedAt = ts, ts

	cols := "project_no, season, brand, subcategory, design, target_mrp, market_focus, expected_sales_qty, " +
		strings.Join(regionColumns, ", ") +
		", sample_adaptation_pct, color_requirements, pm_general_remarks, pm_reference_image_url, status, created_by, created_at, updated_at"
	args := []any{
		b.ProjectNo, b.Season, b.Brand, b.Subcategory, b.Design, b.TargetMRP, b.MarketFocus, b.ExpectedSalesQty,
	}
	for _, f := range b.RegionQuantities.Fields() {
		args = append(args, *f)
	}
	args = append(args,
		b.SampleAdaptationPct, b.ColorRequirements, b.PMGeneralRemarks, b.PMReferenceImageURL,
		string(b.Status), b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	var id int64
	err := q.queryRow(ctx, "INSERT INTO market_briefs ("+cols+") VALUES ("+placeholders+") RETURNING id", args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert brief: %w", err)
	}
	b.ID = id
	return id, nil
}

// GetBrief returns a brief by id or ErrNotFound
func (q *Queries) GetBrief(ctx context.Context, id int64) (*models.Brief, error) {
	b, err := scanBrief(q.queryRow(ctx, "SELECT "+briefColumns+" FROM market_briefs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("brief %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load brief %d: %w", id, err)
	}
	return b, nil
}

// BriefExists reports whether a brief row exists
func (q *Queries) BriefExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := q.queryRow(ctx, "SELECT COUNT(*) FROM market_briefs WHERE id = ?", id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check brief %d: %w", id, err)
	}
	return n > 0, nil
}

// ListBriefs returns briefs newest first, optionally filtered by status. limit <= 0 means no limit.
func (q *Queries) ListBriefs(ctx context.Context, status *models.BriefStatus, limit int) ([]models.Brief, error) {
	query := "SELECT " + briefColumns + " FROM market_briefs"
	var args []any
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list briefs: %w", err)
	}
	defer rows.Close()

	briefs := make([]models.Brief, 0)
	for rows.Next() {
		b, err := scanBrief(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brief: %w", err)
		}
		briefs = append(briefs, *b)
	}
	return briefs, rows.Err()
}

// SetBriefStatus writes a brief's status and refreshes updated_at
func (q *Queries) SetBriefStatus(ctx context.Context, id int64, status models.BriefStatus) error {
	res, err := q.exec(ctx, "UPDATE market_briefs SET status = ?, updated_at = ? WHERE id = ?", string(status), now(), id)
	if err != nil {
		return fmt.Errorf("failed to update brief %d status: %w", id, err)
	}
	return requireAffected(res, "brief", id)
}

// DeleteBrief hard-deletes a brief. Its concepts are left in place.
func (q *Queries) DeleteBrief(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, "DELETE FROM market_briefs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete brief %d: %w", id, err)
	}
	return requireAffected(res, "brief", id)
}

func requireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}
