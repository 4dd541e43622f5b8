package db

import (
	"context"
	"fmt"

	"github.com/shankarium/plm/internal/models"
)

// workflowTables are cleared by ClearWorkflow, children first
var workflowTables = []string{"sales_info", "concepts", "market_briefs", "comments"}

// Counts returns row counts for every table
func (q *Queries) Counts(ctx context.Context) (models.TableCounts, error) {
	var counts models.TableCounts
	targets := []struct {
		table string
		dst   *int64
	}{
		{"users", &counts.Users},
		{"market_briefs", &counts.Briefs},
		{"concepts", &counts.Concepts},
		{"sales_info", &counts.SalesInfo},
		{"comments", &counts.Comments},
	}
	for _, t := range targets {
		if err := q.queryRow(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return counts, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return counts, nil
}

// ClearWorkflow deletes every brief, concept, sales info and comment row in one
// transaction. Users are left untouched.
func (db *Database) ClearWorkflow(ctx context.Context) error {
	return db.WithTx(ctx, func(q *Queries) error {
		for _, table := range workflowTables {
			if _, err := q.exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
