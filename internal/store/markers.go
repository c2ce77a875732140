package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	creditMarkerPrefix = "credited:"
	creditMarkerTTL    = time.Hour
)

// RoundMarkers are the per-(table, round) idempotency markers that keep
// settlement credit distribution from paying out twice.
type RoundMarkers struct {
	client *redis.Client
}

func NewRoundMarkers(client *redis.Client) *RoundMarkers {
	return &RoundMarkers{client: client}
}

func creditMarkerKey(tableID string, round int) string {
	return fmt.Sprintf("%s%s:%d", creditMarkerPrefix, tableID, round)
}

// TryMark atomically claims the round for crediting. False means another
// invocation already holds or completed it.
func (m *RoundMarkers) TryMark(ctx context.Context, tableID string, round int) (bool, error) {
	ok, err := m.client.SetNX(ctx, creditMarkerKey(tableID, round), "1", creditMarkerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark round credited: %w", err)
	}
	return ok, nil
}

// Unmark releases the marker after a failed distribution so a later sweep
// can retry the payout.
func (m *RoundMarkers) Unmark(ctx context.Context, tableID string, round int) error {
	if err := m.client.Del(ctx, creditMarkerKey(tableID, round)).Err(); err != nil {
		return fmt.Errorf("failed to unmark round credited: %w", err)
	}
	return nil
}
