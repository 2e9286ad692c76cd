package repository

import (
	"context"
	"time"

	"bcmoney-backend/internal/features/auth/models"
)

// AuthRepository persists credential records and bearer sessions.
// GetAccountByEmail and GetSession return (nil, nil) when absent.
type AuthRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
