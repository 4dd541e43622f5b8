package db

import (
	"context"
	"fmt"

	"github.com/shankarium/plm/internal/logging"
)

// schema is rendered per dialect. Parent links are plain columns: admins may hard-delete a
// brief or concept and leave its children in place, so no foreign key is declared and the
// parent-exists invariant is enforced by the write transactions instead.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS market_briefs (
		id {{pk}},
		project_no TEXT NOT NULL DEFAULT '',
		season TEXT NOT NULL DEFAULT '',
		brand TEXT NOT NULL DEFAULT '',
		subcategory TEXT NOT NULL DEFAULT '',
		design TEXT NOT NULL DEFAULT '',
		target_mrp {{real}},
		market_focus TEXT NOT NULL DEFAULT '',
		expected_sales_qty {{int}},
		stateqty_kerala {{int}}, stateqty_tn {{int}}, stateqty_ka {{int}},
		stateqty_ap {{int}}, stateqty_ts {{int}}, stateqty_mh {{int}},
		stateqty_gj {{int}}, stateqty_rj {{int}}, stateqty_dl {{int}},
		stateqty_wb {{int}}, stateqty_other {{int}},
		sample_adaptation_pct {{int}},
		color_requirements TEXT NOT NULL DEFAULT '',
		pm_general_remarks TEXT NOT NULL DEFAULT '',
		pm_reference_image_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Draft',
		created_by TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_market_briefs_status ON market_briefs (status)`,
	`CREATE TABLE IF NOT EXISTS concepts (
		id {{pk}},
		brief_id {{int}} NOT NULL,
		nd_no TEXT NOT NULL DEFAULT '',
		proposed_mrp {{real}},
		upper_material TEXT NOT NULL DEFAULT '',
		lining TEXT NOT NULL DEFAULT '',
		insole TEXT NOT NULL DEFAULT '',
		outsole TEXT NOT NULL DEFAULT '',
		construction TEXT NOT NULL DEFAULT '',
		size_curve TEXT NOT NULL DEFAULT '',
		colorways TEXT NOT NULL DEFAULT '',
		article_image_url TEXT NOT NULL DEFAULT '',
		brand_suggestion TEXT NOT NULL DEFAULT '',
		npd_remarks TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'In_Development',
		created_by TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_concepts_brief_id ON concepts (brief_id)`,
	`CREATE INDEX IF NOT EXISTS idx_concepts_status ON concepts (status)`,
	`CREATE TABLE IF NOT EXISTS sales_info (
		id {{pk}},
		concept_id {{int}} NOT NULL,
		margin_pct {{real}},
		selling_story TEXT NOT NULL DEFAULT '',
		sales_remarks TEXT NOT NULL DEFAULT '',
		final_presentation_image_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Published',
		created_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_info_concept_id ON sales_info (concept_id, id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id {{pk}},
		entity_type TEXT NOT NULL,
		entity_id {{int}} NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_entity ON comments (entity_type, entity_id)`,
}

// Migrate creates the schema. It is idempotent and runs once at startup, before the
// server accepts traffic.
func (db *Database) Migrate(ctx context.Context) error {
	types := db.Dialect.columnTypes()
	for i, stmt := range schema {
		if _, err := db.DB.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	logging.Logger().Info().Int("statements", len(schema)).Str("driver", string(db.Dialect)).Msg("[PLM-DB] schema ready")
	return nil
}
