package db

import (
	"context"
	"fmt"

	"github.com/shankarium/plm/internal/models"
)

// CreateComment appends a comment and returns its id
func (q *Queries) CreateComment(ctx context.Context, c *models.Comment) (int64, error) {
	c.CreatedAt = now()
	var id int64
	err := q.queryRow(ctx,
		"INSERT INTO comments (entity_type, entity_id, author, body, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id",
		string(c.EntityType), c.EntityID, c.Author, c.Body, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comment: %w", err)
	}
	c.ID = id
	return id, nil
}

// ListComments returns the comments on one entity, oldest first
func (q *Queries) ListComments(ctx context.Context, target models.CommentTarget, entityID int64) ([]models.Comment, error) {
	rows, err := q.query(ctx,
		"SELECT id, entity_type, entity_id, author, body, created_at FROM comments WHERE entity_type = ? AND entity_id = ? ORDER BY id",
		string(target), entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.EntityType, &c.EntityID, &c.Author, &c.Body, scanTime(&c.CreatedAt)); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
