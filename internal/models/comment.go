package models

import (
	"time"
)

// CommentTarget identifies which entity type a comment annotates
type CommentTarget string

const (
	CommentTargetBrief   CommentTarget = "BRIEF"
	CommentTargetConcept CommentTarget = "CONCEPT"
)

// Comment is a free-text annotation on a brief or concept
type Comment struct {
	ID         int64         `json:"id" db:"id"`
	EntityType CommentTarget `json:"entity_type" db:"entity_type"`
	EntityID   int64         `json:"entity_id" db:"entity_id"`
	Author     string        `json:"author" db:"author"`
	Body       string        `json:"body" db:"body"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// CommentForm is the comment submission form
type CommentForm struct {
	Body string `form:"body" json:"body" binding:"required"`
}
