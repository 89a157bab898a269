package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

// Comment is a reader comment on a post.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	PostID    uuid.UUID     `json:"post"`
	AuthorID  uuid.UUID     `json:"authorId"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CommentView is a comment with its author embedded inline.
type CommentView struct {
	Comment
	Author AuthorSummary `json:"author"`
}

// NewComment carries the fields needed to create a comment. An empty
// Status defaults to approved.
type NewComment struct {
	Content  string
	PostID   uuid.UUID
	AuthorID uuid.UUID
	Status   CommentStatus
}

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}
