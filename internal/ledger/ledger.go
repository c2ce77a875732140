package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Silexemple/satoshi-casino21/internal/database"
	"github.com/Silexemple/satoshi-casino21/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientFunds is returned when a debit would take a balance below
// zero. The caller's state must be treated as if the debit never happened.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrPlayerNotFound is returned for an unknown player identity.
var ErrPlayerNotFound = errors.New("player not found")

// GormLedger is the Player Ledger collaborator backed by Postgres. Every
// balance change is a single atomic statement plus an append-only
// Transaction audit row.
type GormLedger struct {
	db *database.DB
}

func NewGormLedger(db *database.DB) *GormLedger {
	return &GormLedger{db: db}
}

// GetBalance returns the player's current chip balance in sats.
func (l *GormLedger) GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error) {
	var player models.Player
	err := l.db.WithContext(ctx).Select("balance").First(&player, "id = ?", playerID).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return player.Balance, nil
}

// Debit removes amount from the player's balance, guarded so the balance
// never goes negative.
func (l *GormLedger) Debit(ctx context.Context, playerID uuid.UUID, amount int64, description string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Player{}).
			Where("id = ? AND balance >= ?", playerID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to debit player: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		entry := models.Transaction{
			PlayerID:    playerID,
			Type:        models.TransactionDebit,
			Amount:      amount,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record debit: %w", err)
		}
		return nil
	})
}

// Credit adds amount to the player's balance.
func (l *GormLedger) Credit(ctx context.Context, playerID uuid.UUID, amount int64, description string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Player{}).
			Where("id = ?", playerID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to credit player: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPlayerNotFound
		}

		entry := models.Transaction{
			PlayerID:    playerID,
			Type:        models.TransactionCredit,
			Amount:      amount,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record credit: %w", err)
		}
		return nil
	})
}

// History returns the player's most recent transactions, newest first.
func (l *GormLedger) History(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := l.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction history: %w", err)
	}
	return entries, nil
}
