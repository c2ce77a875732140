package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/blackjack"
	"github.com/go-redis/redis/v8"
)

const (
	tableKeyPrefix = "table:"

	// tableTTL bounds a table record's lifetime; it is refreshed on every
	// write and the lazy-init path recreates evicted tables.
	tableTTL = 24 * time.Hour
)

// TableStore reads and writes the single durable Table record per table.
// Records are always written wholesale, never partially updated.
type TableStore struct {
	client *redis.Client
}

func NewTableStore(client *redis.Client) *TableStore {
	return &TableStore{client: client}
}

// Get returns the table record, or nil when the store holds none.
func (s *TableStore) Get(ctx context.Context, tableID string) (*blackjack.Table, error) {
	data, err := s.client.Get(ctx, tableKeyPrefix+tableID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get table record: %w", err)
	}

	var table blackjack.Table
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table record: %w", err)
	}
	return &table, nil
}

// Save persists the whole table record, refreshing its lifetime.
func (s *TableStore) Save(ctx context.Context, table *blackjack.Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal table record: %w", err)
	}
	if err := s.client.Set(ctx, tableKeyPrefix+table.ID, data, tableTTL).Err(); err != nil {
		return fmt.Errorf("failed to save table record: %w", err)
	}
	return nil
}
