package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	houseBankrollKey = "house:bankroll"

	// DefaultHouseBankroll seeds the counter on first reference.
	DefaultHouseBankroll int64 = 500_000
)

// HouseBankroll is the shared counter of funds the house can cover wagers
// with. Commission flows in, net player winnings flow out, and the
// wager-admission exposure check reads it.
type HouseBankroll struct {
	client *redis.Client
}

func NewHouseBankroll(client *redis.Client) *HouseBankroll {
	return &HouseBankroll{client: client}
}

// Available returns the current bankroll, seeding the default on first use.
func (b *HouseBankroll) Available(ctx context.Context) (int64, error) {
	v, err := b.client.Get(ctx, houseBankrollKey).Int64()
	if err == redis.Nil {
		if err := b.client.Set(ctx, houseBankrollKey, DefaultHouseBankroll, 0).Err(); err != nil {
			return 0, fmt.Errorf("failed to seed house bankroll: %w", err)
		}
		return DefaultHouseBankroll, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read house bankroll: %w", err)
	}
	return v, nil
}

// Adjust applies a settlement's net effect on the house.
func (b *HouseBankroll) Adjust(ctx context.Context, delta int64) error {
	if err := b.client.IncrBy(ctx, houseBankrollKey, delta).Err(); err != nil {
		return fmt.Errorf("failed to adjust house bankroll: %w", err)
	}
	return nil
}
