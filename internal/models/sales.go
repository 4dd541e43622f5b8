package models

import (
	"time"
)

// SalesStatusPublished is the only status a sales info row ever carries
const SalesStatusPublished = "Published"

// SalesInfo represents the commercial finalization record for a concept.
// Rows are append-only; the highest id per concept is authoritative.
type SalesInfo struct {
	ID                        int64     `json:"id" db:"id"`
	ConceptID                 int64     `json:"concept_id" db:"concept_id"`
	MarginPct                 *float64  `json:"margin_pct" db:"margin_pct"`
	SellingStory              string    `json:"selling_story" db:"selling_story"`
	SalesRemarks              string    `json:"sales_remarks" db:"sales_remarks"`
	FinalPresentationImageURL string    `json:"final_presentation_image_url" db:"final_presentation_image_url"`
	Status                    string    `json:"status" db:"status"`
	CreatedAt                 time.Time `json:"created_at" db:"created_at"`
}

// FinalizeForm is the PM-Final finalization form
type FinalizeForm struct {
	MarginPct                 string `form:"margin_pct" json:"margin_pct"`
	SellingStory              string `form:"selling_story" json:"selling_story"`
	SalesRemarks              string `form:"sales_remarks" json:"sales_remarks"`
	FinalPresentationImageURL string `form:"final_presentation_image_url" json:"final_presentation_image_url"`
}
