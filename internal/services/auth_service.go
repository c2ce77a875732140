package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Silexemple/satoshi-casino21/internal/auth"
	"github.com/Silexemple/satoshi-casino21/internal/database"
	"github.com/Silexemple/satoshi-casino21/internal/models"
	"github.com/Silexemple/satoshi-casino21/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for a bad login, without revealing
// whether the identity or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles player registration and login.
type AuthService struct {
	db            *database.DB
	jwtManager    *auth.JWTManager
	welcomeCredit int64
}

func NewAuthService(db *database.DB, jwtManager *auth.JWTManager, welcomeCredit int64) *AuthService {
	return &AuthService{
		db:            db,
		jwtManager:    jwtManager,
		welcomeCredit: welcomeCredit,
	}
}

// Register creates a new player account seeded with the welcome credit and
// returns a session token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := models.Player{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		Balance:      s.welcomeCredit,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&player).Error; err != nil {
			if database.IsUniqueConstraintError(err) {
				return errors.New(database.GetErrorMessage(err))
			}
			return fmt.Errorf("failed to create player: %w", err)
		}
		if s.welcomeCredit > 0 {
			entry := models.Transaction{
				PlayerID:    player.ID,
				Type:        models.TransactionCredit,
				Amount:      s.welcomeCredit,
				Description: "welcome credit",
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to record welcome credit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateToken(player.ID, player.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{Player: player, Token: token}, nil
}

// Login authenticates by email or username and returns a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	var player models.Player
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", req.EmailOrUsername, req.EmailOrUsername).
		First(&player).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up player: %w", err)
	}

	if err := auth.VerifyPassword(req.Password, player.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(player.ID, player.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{Player: player, Token: token}, nil
}

// GetPlayer loads a player's profile by id.
func (s *AuthService) GetPlayer(ctx context.Context, playerID uuid.UUID) (*models.Player, error) {
	var player models.Player
	err := s.db.WithContext(ctx).First(&player, "id = ?", playerID).Error
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, errors.New("player not found")
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &player, nil
}
