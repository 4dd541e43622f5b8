package models

import (
	"time"
)

// ConceptStatus represents the pipeline state of a design concept
type ConceptStatus string

const (
	// ConceptStatusInDevelopment is the schema default; creation never produces it.
	ConceptStatusInDevelopment ConceptStatus = "In_Development"
	ConceptStatusReadyForPM    ConceptStatus = "Ready_for_PM"
	ConceptStatusReadyForSales ConceptStatus = "Ready_for_Sales"
)

// Concept represents a design proposal answering a brief
type Concept struct {
	ID              int64         `json:"id" db:"id"`
	BriefID         int64         `json:"brief_id" db:"brief_id"`
	NDNo            string        `json:"nd_no" db:"nd_no"`
	ProposedMRP     *float64      `json:"proposed_mrp" db:"proposed_mrp"`
	UpperMaterial   string        `json:"upper_material" db:"upper_material"`
	Lining          string        `json:"lining" db:"lining"`
	Insole          string        `json:"insole" db:"insole"`
	Outsole         string        `json:"outsole" db:"outsole"`
	Construction    string        `json:"construction" db:"construction"`
	SizeCurve       string        `json:"size_curve" db:"size_curve"`
	Colorways       string        `json:"colorways" db:"colorways"`
	ArticleImageURL string        `json:"article_image_url" db:"article_image_url"`
	BrandSuggestion string        `json:"brand_suggestion" db:"brand_suggestion"`
	NPDRemarks      string        `json:"npd_remarks" db:"npd_remarks"`
	Status          ConceptStatus `json:"status" db:"status"`
	CreatedBy       string        `json:"created_by" db:"created_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`

	// Populated by joined queries
	Brief *BriefSummary `json:"brief,omitempty"`
}

// ConceptForm is the NPD concept submission form
type ConceptForm struct {
	NDNo            string `form:"nd_no" json:"nd_no"`
	ProposedMRP     string `form:"proposed_mrp" json:"proposed_mrp"`
	UpperMaterial   string `form:"upper_material" json:"upper_material"`
	Lining          string `form:"lining" json:"lining"`
	Insole          string `form:"insole" json:"insole"`
	Outsole         string `form:"outsole" json:"outsole"`
	Construction    string `form:"construction" json:"construction"`
	SizeCurve       string `form:"size_curve" json:"size_curve"`
	Colorways       string `form:"colorways" json:"colorways"`
	ArticleImageURL string `form:"article_image_url" json:"article_image_url"`
	BrandSuggestion string `form:"brand_suggestion" json:"brand_suggestion"`
	NPDRemarks      string `form:"npd_remarks" json:"npd_remarks"`
}

// CatalogItem is a sales-ready concept with its authoritative sales info
type CatalogItem struct {
	Concept
	Sales *SalesInfo `json:"sales"`
}

// ConceptDetail is the concept detail view
type ConceptDetail struct {
	Concept  *Concept   `json:"concept"`
	Sales    *SalesInfo `json:"sales"`
	Comments []Comment  `json:"comments"`
}
