package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/edukita/edukita-backend/internal/logger"
)

// DeleteGuard serializes cascading deletes for the same target user.
// The cascade itself is not idempotent while in flight, so concurrent
// requests for one user must take the lock first.
type DeleteGuard interface {
	Acquire(ctx context.Context, targetID uuid.UUID) (bool, error)
	Release(ctx context.Context, targetID uuid.UUID) error
}

type redisDeleteGuard struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewDeleteGuard(log *logger.Logger, addr string, ttl time.Duration) (DeleteGuard, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisDeleteGuard{
		log: log.With("service", "DeleteGuard"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func guardKey(targetID uuid.UUID) string {
	return "cascade:delete:" + targetID.String()
}

func (g *redisDeleteGuard) Acquire(ctx context.Context, targetID uuid.UUID) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, guardKey(targetID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire delete guard for %s: %w", targetID, err)
	}
	if !ok {
		g.log.Debug("Delete guard already held", "target_id", targetID)
	}
	return ok, nil
}

func (g *redisDeleteGuard) Release(ctx context.Context, targetID uuid.UUID) error {
	if err := g.rdb.Del(ctx, guardKey(targetID)).Err(); err != nil {
		return fmt.Errorf("failed to release delete guard for %s: %w", targetID, err)
	}
	return nil
}
