package usecase

import (
	"context"
	"time"

	"settlement-service/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusCacheTTL = 24 * time.Hour

// StatusCache keeps settled transaction statuses in Redis so status lookups
// do not hit the database. A nil cache is a no-op; the pipeline works the
// same without Redis.
type StatusCache struct {
	rdb *redis.Client
}

func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{rdb: rdb}
}

func statusKey(id uuid.UUID) string {
	return "transaction:status:" + id.String()
}

func (c *StatusCache) Put(ctx context.Context, id uuid.UUID, status domain.Status) {
	if c == nil || c.rdb == nil {
		return
	}
	// Cache write failures are invisible to callers; the DB stays the source
	// of truth.
	_ = c.rdb.Set(ctx, statusKey(id), string(status), statusCacheTTL).Err()
}

func (c *StatusCache) Get(ctx context.Context, id uuid.UUID) (domain.Status, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, statusKey(id)).Result()
	if err != nil {
		return "", false
	}
	return domain.Status(val), true
}
