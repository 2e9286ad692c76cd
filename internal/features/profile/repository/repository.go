package repository

import (
	"context"

	"bcmoney-backend/internal/features/profile/models"
)

// ProfileRepository persists user profile documents. Get returns
// (nil, nil) for an absent profile; Save merges fields into the
// document, creating it when needed.
type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
	SaveSets(uid string, watchlist, ownedTokens []string)
	ClaimHandle(ctx context.Context, uid, oldHandle, newHandle string) error
	ResolveHandle(ctx context.Context, handle string) (string, error)
	Reset(ctx context.Context, uid string) error
}
