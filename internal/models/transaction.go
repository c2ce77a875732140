package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types recorded in the append-only audit log.
const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"
)

// Transaction is one append-only audit log entry for a player balance
// change. The engine never reads these back; they exist for audit and the
// player-facing history endpoint.
type Transaction struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlayerID    uuid.UUID `json:"player_id" gorm:"type:uuid;not null;index"`
	Player      Player    `json:"-" gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
	Type        string    `json:"type" gorm:"not null;size:20"`
	Amount      int64     `json:"amount" gorm:"not null"` // sats, always positive
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
