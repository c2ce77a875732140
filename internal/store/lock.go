package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	lockKeyPrefix = "lock:table:"

	// lockTTL must outlast the slowest mutation yet stay short enough that
	// a crashed holder self-heals without operator intervention.
	lockTTL = 10 * time.Second
)

// TableLock is the per-table mutual exclusion token: an ephemeral record
// created only if absent. Acquisition is one atomic SETNX, never an
// existence check followed by a create.
type TableLock struct {
	client *redis.Client
}

func NewTableLock(client *redis.Client) *TableLock {
	return &TableLock{client: client}
}

// Acquire makes a single non-retrying attempt to take the lock. A false
// return means another mutator holds it and the caller should report busy.
func (l *TableLock) Acquire(ctx context.Context, tableID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKeyPrefix+tableID, "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire table lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock. Always called in a deferred path so both success
// and error exits unlock.
func (l *TableLock) Release(ctx context.Context, tableID string) error {
	if err := l.client.Del(ctx, lockKeyPrefix+tableID).Err(); err != nil {
		return fmt.Errorf("failed to release table lock: %w", err)
	}
	return nil
}
