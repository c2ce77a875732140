package database

import (
	"log/slog"
)

// SetupIndexes creates additional indexes that GORM can't handle automatically
func (db *DB) SetupIndexes() error {
	slog.Info("Setting up additional database indexes")

	// Transaction history is always read newest-first per player
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_player_recent
		ON transactions(player_id, created_at DESC)
	`).Error; err != nil {
		return err
	}

	slog.Info("Additional database indexes created successfully")
	return nil
}
