package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskloop/task-api/internal/api/metrics"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore records which Idempotency-Key values have already produced
// a task, backed by Redis. Keys are scoped per owner: idem:<owner_id>:<key>.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Get returns the task id previously recorded for this owner and key, if any.
func (s *IdempotencyStore) Get(ctx context.Context, ownerID, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, s.key(ownerID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IdempotencyTotal.WithLabelValues("miss").Inc()
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("idempotency get: %w", err)
	}

	taskID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency get: bad value %q: %w", val, err)
	}
	metrics.IdempotencyTotal.WithLabelValues("hit").Inc()
	return taskID, true, nil
}

// Set records that this owner's key produced taskID (expires after idempotencyTTL).
func (s *IdempotencyStore) Set(ctx context.Context, ownerID, key string, taskID int64) error {
	return s.client.Set(ctx, s.key(ownerID, key), strconv.FormatInt(taskID, 10), idempotencyTTL).Err()
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return fmt.Sprintf("idem:%s:%s", ownerID, key)
}
