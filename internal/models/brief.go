package models

import (
	"time"
)

// BriefStatus represents the lifecycle state of a market brief
type BriefStatus string

const (
	BriefStatusDraft     BriefStatus = "Draft"
	BriefStatusSubmitted BriefStatus = "Submitted"
)

// RegionCodes lists the per-region quantity breakdown keys in column order
var RegionCodes = []string{"kerala", "tn", "ka", "ap", "ts", "mh", "gj", "rj", "dl", "wb", "other"}

// RegionQuantities holds the expected quantity per sales region
type RegionQuantities struct {
	Kerala *int64 `json:"stateqty_kerala"`
	TN     *int64 `json:"stateqty_tn"`
	KA     *int64 `json:"stateqty_ka"`
	AP     *int64 `json:"stateqty_ap"`
	TS     *int64 `json:"stateqty_ts"`
	MH     *int64 `json:"stateqty_mh"`
	GJ     *int64 `json:"stateqty_gj"`
	RJ     *int64 `json:"stateqty_rj"`
	DL     *int64 `json:"stateqty_dl"`
	WB     *int64 `json:"stateqty_wb"`
	Other  *int64 `json:"stateqty_other"`
}

// Fields returns pointers to each region field, ordered like RegionCodes.
// Used both for scanning rows and for binding insert arguments.
func (q *RegionQuantities) Fields() []**int64 {
	return []**int64{&q.Kerala, &q.TN, &q.KA, &q.AP, &q.TS, &q.MH, &q.GJ, &q.RJ, &q.DL, &q.WB, &q.Other}
}

// Brief represents a market requirement initiating the pipeline
type Brief struct {
	ID                  int64       `json:"id" db:"id"`
	ProjectNo           string      `json:"project_no" db:"project_no"`
	Season              string      `json:"season" db:"season"`
	Brand               string      `json:"brand" db:"brand"`
	Subcategory         string      `json:"subcategory" db:"subcategory"`
	Design              string      `json:"design" db:"design"`
	TargetMRP           *float64    `json:"target_mrp" db:"target_mrp"`
	MarketFocus         string      `json:"market_focus" db:"market_focus"`
	ExpectedSalesQty    *int64      `json:"expected_sales_qty" db:"expected_sales_qty"`
	RegionQuantities                // stateqty_* columns
	SampleAdaptationPct *int64      `json:"sample_adaptation_pct" db:"sample_adaptation_pct"`
	ColorRequirements   string      `json:"color_requirements" db:"color_requirements"`
	PMGeneralRemarks    string      `json:"pm_general_remarks" db:"pm_general_remarks"`
	PMReferenceImageURL string      `json:"pm_reference_image_url" db:"pm_reference_image_url"`
	Status              BriefStatus `json:"status" db:"status"`
	CreatedBy           string      `json:"created_by" db:"created_by"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// BriefSummary is the parent-brief projection joined into concept views.
// It is nil when the parent brief has been deleted.
type BriefSummary struct {
	ID          int64    `json:"id"`
	ProjectNo   string   `json:"project_no"`
	Season      string   `json:"season"`
	Brand       string   `json:"brand,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Design      string   `json:"design,omitempty"`
	TargetMRP   *float64 `json:"target_mrp,omitempty"`
}

// BriefForm is the PM brief submission form. Numeric fields arrive as text so that
// empty inputs can be stored as NULL.
type BriefForm struct {
	ProjectNo           string `form:"project_no" json:"project_no"`
	Season              string `form:"season" json:"season"`
	Brand               string `form:"brand" json:"brand"`
	Subcategory         string `form:"subcategory" json:"subcategory"`
	Design              string `form:"design" json:"design"`
	TargetMRP           string `form:"target_mrp" json:"target_mrp"`
	MarketFocus         string `form:"market_focus" json:"market_focus"`
	ExpectedSalesQty    string `form:"expected_sales_qty" json:"expected_sales_qty"`
	StateQtyKerala      string `form:"stateqty_kerala" json:"stateqty_kerala"`
	StateQtyTN          string `form:"stateqty_tn" json:"stateqty_tn"`
	StateQtyKA          string `form:"stateqty_ka" json:"stateqty_ka"`
	StateQtyAP          string `form:"stateqty_ap" json:"stateqty_ap"`
	StateQtyTS          string `form:"stateqty_ts" json:"stateqty_ts"`
	StateQtyMH          string `form:"stateqty_mh" json:"stateqty_mh"`
	StateQtyGJ          string `form:"stateqty_gj" json:"stateqty_gj"`
	StateQtyRJ          string `form:"stateqty_rj" json:"stateqty_rj"`
	StateQtyDL          string `form:"stateqty_dl" json:"stateqty_dl"`
	StateQtyWB          string `form:"stateqty_wb" json:"stateqty_wb"`
	StateQtyOther       string `form:"stateqty_other" json:"stateqty_other"`
	SampleAdaptationPct string `form:"sample_adaptation_pct" json:"sample_adaptation_pct"`
	ColorRequirements   string `form:"color_requirements" json:"color_requirements"`
	PMGeneralRemarks    string `form:"pm_general_remarks" json:"pm_general_remarks"`
	PMReferenceImageURL string `form:"pm_reference_image_url" json:"pm_reference_image_url"`
}

// RegionInputs returns the raw region inputs ordered like RegionCodes
func (f *BriefForm) RegionInputs() []string {
	return []string{
		f.StateQtyKerala, f.StateQtyTN, f.StateQtyKA, f.StateQtyAP, f.StateQtyTS, f.StateQtyMH,
		f.StateQtyGJ, f.StateQtyRJ, f.StateQtyDL, f.StateQtyWB, f.StateQtyOther,
	}
}

// BriefDetail is the brief detail view
type BriefDetail struct {
	Brief    *Brief    `json:"brief"`
	Concepts []Concept `json:"concepts"`
	Comments []Comment `json:"comments"`
}
