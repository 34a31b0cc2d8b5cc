package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newResetTokenTestRepo(t *testing.T) (ResetTokenRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewResetTokenRepository(client), mr
}

func TestResetTokenRepository_ConsumeIsSingleUse(t *testing.T) {
	repo, _ := newResetTokenTestRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	hash := "dummy-token-hash"

	if err := repo.Store(ctx, hash, userID, 15*time.Minute); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := repo.Consume(ctx, hash)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got != userID {
		t.Fatalf("expected user %s, got %s", userID, got)
	}

	if _, err := repo.Consume(ctx, hash); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound on second consume, got %v", err)
	}
}

func TestResetTokenRepository_TokensExpire(t *testing.T) {
	repo, mr := newResetTokenTestRepo(t)
	ctx := context.Background()

	hash := "expiring-token-hash"
	if err := repo.Store(ctx, hash, uuid.New(), 15*time.Minute); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	mr.FastForward(16 * time.Minute)

	if _, err := repo.Consume(ctx, hash); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound after expiry, got %v", err)
	}
}

func TestResetTokenRepository_UnknownToken(t *testing.T) {
	repo, _ := newResetTokenTestRepo(t)

	if _, err := repo.Consume(context.Background(), "never-stored"); !errors.Is(err, ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
	}
}
