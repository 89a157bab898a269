package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ResetTokenTTL is how long a password reset link stays valid.
	ResetTokenTTL = time.Hour

	resetKeyPrefix = "reset:"
)

// ResetTokens issues single-use password reset tokens stored in Valkey.
type ResetTokens struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokens creates a reset token store backed by the given client.
func NewResetTokens(client *redis.Client) *ResetTokens {
	return &ResetTokens{client: client, ttl: ResetTokenTTL}
}

// Issue creates a token for userID that expires after ResetTokenTTL.
func (t *ResetTokens) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := generateID()
	if err != nil {
		return "", fmt.Errorf("reset token generate: %w", err)
	}
	if err := t.client.Set(ctx, resetKeyPrefix+token, userID.String(), t.ttl).Err(); err != nil {
		return "", fmt.Errorf("reset token store: %w", err)
	}
	return token, nil
}

// Consume redeems a token and returns the user it was issued for. The
// token is deleted in the same round trip so it cannot be used twice. ok
// is false for unknown or expired tokens.
func (t *ResetTokens) Consume(ctx context.Context, token string) (userID uuid.UUID, ok bool, err error) {
	val, err := t.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("reset token consume: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("reset token parse: %w", err)
	}
	return id, true, nil
}
