package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"inkwell/internal/models"
)

// SubscriberStore manages newsletter signups.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore creates a new SubscriberStore.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

// Subscribe adds an email to the newsletter list. An email that is already
// subscribed returns ErrAlreadySubscribed.
func (s *SubscriberStore) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	sub := &models.Subscriber{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO newsletter_subscribers (email)
		VALUES ($1)
		RETURNING id, email, subscribed_at
	`, email).Scan(&sub.ID, &sub.Email, &sub.SubscribedAt)
	if isUniqueViolation(err) {
		return nil, ErrAlreadySubscribed
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// ListEmails returns every subscribed address in signup order.
func (s *SubscriberStore) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email FROM newsletter_subscribers ORDER BY subscribed_at`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
