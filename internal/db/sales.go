package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shankarium/plm/internal/models"
)

const salesColumns = `id, concept_id, margin_pct, selling_story, sales_remarks, final_presentation_image_url, status, created_at`

// salesJoinColumns reads an outer-joined sales_info row; every column may be NULL
const salesJoinColumns = `s.id, s.concept_id, s.margin_pct, COALESCE(s.selling_story, ''), COALESCE(s.sales_remarks, ''),
	COALESCE(s.final_presentation_image_url, ''), COALESCE(s.status, ''), s.created_at`

func scanSalesInfo(row rowScanner) (*models.SalesInfo, error) {
	var s models.SalesInfo
	err := row.Scan(&s.ID, &s.ConceptID, &s.MarginPct, &s.SellingStory, &s.SalesRemarks,
		&s.FinalPresentationImageURL, &s.Status, scanTime(&s.CreatedAt))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type salesScan struct {
	id        sql.NullInt64
	conceptID sql.NullInt64
	createdAt nullTime
	info      models.SalesInfo
}

func (s *salesScan) dest() []any {
	return []any{
		&s.id, &s.conceptID, &s.info.MarginPct, &s.info.SellingStory, &s.info.SalesRemarks,
		&s.info.FinalPresentationImageURL, &s.info.Status, &s.createdAt,
	}
}

func (s *salesScan) result() *models.SalesInfo {
	if !s.id.Valid {
		return nil
	}
	info := s.info
	info.ID = s.id.Int64
	info.ConceptID = s.conceptID.Int64
	info.CreatedAt = s.createdAt.Time
	return &info
}

// CreateSalesInfo appends a sales info row and returns its id
func (q *Queries) CreateSalesInfo(ctx context.Context, s *models.SalesInfo) (int64, error) {
	s.CreatedAt = now()
	if s.Status == "" {
		s.Status = models.SalesStatusPublished
	}

	var id int64
	err := q.queryRow(ctx, `INSERT INTO sales_info (concept_id, margin_pct, selling_story, sales_remarks,
		final_presentation_image_url, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		s.ConceptID, s.MarginPct, s.SellingStory, s.SalesRemarks, s.FinalPresentationImageURL, s.Status, s.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sales info: %w", err)
	}
	s.ID = id
	return id, nil
}

// LatestSalesInfo returns the authoritative (highest id) sales info for a concept, or ErrNotFound
func (q *Queries) LatestSalesInfo(ctx context.Context, conceptID int64) (*models.SalesInfo, error) {
	s, err := scanSalesInfo(q.queryRow(ctx,
		"SELECT "+salesColumns+" FROM sales_info WHERE concept_id = ? ORDER BY id DESC LIMIT 1", conceptID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sales info for concept %d: %w", conceptID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sales info for concept %d: %w", conceptID, err)
	}
	return s, nil
}

// ListSalesInfo returns sales info rows newest first. A zero conceptID lists all rows.
func (q *Queries) ListSalesInfo(ctx context.Context, conceptID int64, limit int) ([]models.SalesInfo, error) {
	query := "SELECT " + salesColumns + " FROM sales_info"
	var args []any
	if conceptID > 0 {
		query += " WHERE concept_id = ?"
		args = append(args, conceptID)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales info: %w", err)
	}
	defer rows.Close()

	out := make([]models.SalesInfo, 0)
	for rows.Next() {
		s, err := scanSalesInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales info: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// DeleteSalesInfo hard-deletes a single sales info row
func (q *Queries) DeleteSalesInfo(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, "DELETE FROM sales_info WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sales info %d: %w", id, err)
	}
	return requireAffected(res, "sales info", id)
}
