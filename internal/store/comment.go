package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CommentStore handles comment persistence.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a comment. created_at is set by the database and an empty
// status defaults to approved.
func (s *CommentStore) Create(ctx context.Context, nc models.NewComment) (*models.Comment, error) {
	status := nc.Status
	if status == "" {
		status = models.CommentStatusApproved
	}

	c := &models.Comment{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (content, post_id, author_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content, post_id, author_id, status, created_at
	`, nc.Content, nc.PostID, nc.AuthorID, status).Scan(
		&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// ListByPost returns the comments on a post, newest first, each with its
// author. A comment whose author no longer exists fails the call with
// ErrMissingRelation.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.CommentView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cm.id, cm.content, cm.post_id, cm.author_id, cm.status, cm.created_at,
		       u.id, u.name, u.username, u.image
		FROM comments cm
		LEFT JOIN users u ON u.id = cm.author_id
		WHERE cm.post_id = $1
		ORDER BY cm.created_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.CommentView{}
	for rows.Next() {
		var (
			v                 models.CommentView
			authorID          uuid.NullUUID
			name, user, image sql.NullString
		)
		if err := rows.Scan(
			&v.ID, &v.Content, &v.PostID, &v.AuthorID, &v.Status, &v.CreatedAt,
			&authorID, &name, &user, &image,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if !authorID.Valid {
			return nil, fmt.Errorf("list comments: comment %s: %w", v.ID, ErrMissingRelation)
		}
		v.Author = models.AuthorSummary{
			ID:       authorID.UUID,
			Name:     name.String,
			Username: user.String,
			Image:    image.String,
		}
		comments = append(comments, v)
	}
	return comments, rows.Err()
}
