package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FlashLevel categorizes a transient user-facing message
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashWarning FlashLevel = "warning"
)

// Flash is a one-shot message carried across a redirect
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// TableCounts holds row counts per table for the admin dashboard
type TableCounts struct {
	Users     int64 `json:"users"`
	Briefs    int64 `json:"market_briefs"`
	Concepts  int64 `json:"concepts"`
	SalesInfo int64 `json:"sales_info"`
	Comments  int64 `json:"comments"`
}

// AdminOverview is the admin dashboard payload
type AdminOverview struct {
	Counts         TableCounts `json:"counts"`
	RecentBriefs   []Brief     `json:"recent_briefs"`
	RecentConcepts []Concept   `json:"recent_concepts"`
	RecentSales    []SalesInfo `json:"recent_sales"`
}
