package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bcmoney-backend/internal/features/auth/models"
	"bcmoney-backend/internal/features/auth/repository"
	"bcmoney-backend/internal/platform/redis"
)

const (
	keyPrefixAccount = "auth_account:"
	keyPrefixSession = "auth_session:"
)

type authRepository struct {
	client *redis.Client
}

func NewAuthRepository(client *redis.Client) repository.AuthRepository {
	return &authRepository{client: client}
}

func (r *authRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	key := accountKey(account.Email)
	// SetNX keeps two concurrent sign-ups for one email from both winning.
	ok, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	if !ok {
		return fmt.Errorf("account already exists for %s", account.Email)
	}
	return nil
}

func (r *authRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	data, err := r.client.Get(ctx, accountKey(email)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

func (r *authRepository) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, keyPrefixSession+session.Token, data, ttl).Err()
}

func (r *authRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	data, err := r.client.Get(ctx, keyPrefixSession+token).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *authRepository) DeleteSession(ctx context.Context, token string) error {
	return r.client.Del(ctx, keyPrefixSession+token).Err()
}

func accountKey(email string) string {
	return keyPrefixAccount + strings.ToLower(strings.TrimSpace(email))
}
