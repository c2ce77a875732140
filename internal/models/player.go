package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player is the ledger-side record of a casino player. Balance is chips in
// satoshis; every balance change writes a Transaction row alongside it.
type Player struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null;size:50"`
	PasswordHash string         `json:"-" gorm:"not null;size:255"`
	Balance      int64          `json:"balance" gorm:"not null;default:0"` // sats
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `json:"password" validate:"required,min=8,strong_password"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Player Player `json:"player"`
	Token  string `json:"token"`
}
