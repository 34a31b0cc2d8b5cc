package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrResetTokenNotFound = errors.New("reset token not found or expired")
)

// ResetTokenRepository stores short-lived, single-use password reset
// credentials. Backed by Redis with a TTL so tokens expire without a sweeper
// and survive process restarts, keyed by token hash so the store never holds
// the raw credential.
type ResetTokenRepository interface {
	Store(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	// Consume returns the owning user and deletes the token in one step, so a
	// token can be redeemed at most once.
	Consume(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

type resetTokenRepository struct {
	client *redis.Client
}

// NewResetTokenRepository creates a Redis-backed ResetTokenRepository
func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &resetTokenRepository{client: client}
}

func resetKey(tokenHash string) string {
	return "pwreset:" + tokenHash
}

// Store writes the token hash with its TTL.
func (r *resetTokenRepository) Store(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	if err := r.client.Set(ctx, resetKey(tokenHash), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the token.
func (r *resetTokenRepository) Consume(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	value, err := r.client.GetDel(ctx, resetKey(tokenHash)).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, ErrResetTokenNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed reset token payload: %w", err)
	}

	return userID, nil
}
