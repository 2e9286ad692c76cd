package service

import (
	"context"
	"strings"
	"time"

	apperrors "bcmoney-backend/internal/common/errors"
	marketservice "bcmoney-backend/internal/features/market/service"
	"bcmoney-backend/internal/features/profile/models"
	"bcmoney-backend/internal/features/profile/repository"
)

type ProfileService interface {
	GetOrCreate(ctx context.Context, uid, email string) (*models.UserProfile, error)
	Update(ctx context.Context, uid string, req models.UpdateProfileRequest) (*models.UserProfile, error)
	ToggleWatchlist(ctx context.Context, uid, tokenID string) (*models.ToggleResponse, error)
	AddOwnedToken(ctx context.Context, uid, tokenID string) (*models.ToggleResponse, error)
	RemoveOwnedToken(ctx context.Context, uid, tokenID string) (*models.ToggleResponse, error)
	ResolveHandle(ctx context.Context, handle string) (string, error)
	Reset(ctx context.Context, uid string) error
}

type profileService struct {
	repo   repository.ProfileRepository
	market marketservice.MarketService
}

func NewProfileService(repo repository.ProfileRepository, market marketservice.MarketService) ProfileService {
	return &profileService{repo: repo, market: market}
}

// GetOrCreate loads the profile, creating it on first touch. New
// profiles start with the default two-token watchlist the dashboard
// seeds for fresh accounts.
func (s *profileService) GetOrCreate(ctx context.Context, uid, email string) (*models.UserProfile, error) {
	profile, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &models.UserProfile{
		ID:          uid,
		Email:       email,
		Watchlist:   []string{"1", "2"},
		OwnedTokens: []string{},
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, uid string, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.ErrCodeUserNotFound, "Profile not found").WithDetail("uid", uid)
	}

	if req.Handle != "" {
		handle := normalizeHandle(req.Handle)
		if handle != profile.Handle {
			if err := s.repo.ClaimHandle(ctx, uid, profile.Handle, handle); err != nil {
				return nil, err
			}
			profile.Handle = handle
		}
	}
	if req.FirstName != "" {
		profile.FirstName = req.FirstName
	}
	if req.MiddleName != "" {
		profile.MiddleName = req.MiddleName
	}
	if req.LastName != "" {
		profile.LastName = req.LastName
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.PostalAddress != "" {
		profile.PostalAddress = req.PostalAddress
	}
	if req.DepositAddress != "" {
		profile.DepositAddress = req.DepositAddress
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ToggleWatchlist flips tokenID's membership in the watchlist set. Two
// toggles in a row leave the set exactly as it was.
func (s *profileService) ToggleWatchlist(ctx context.Context, uid, tokenID string) (*models.ToggleResponse, error) {
	return s.toggle(ctx, uid, tokenID, func(p *models.UserProfile, set []string) {
		p.Watchlist = set
	}, func(p *models.UserProfile) []string {
		return p.Watchlist
	})
}

// AddOwnedToken adds tokenID to the portfolio set; adding an already
// owned token is a no-op.
func (s *profileService) AddOwnedToken(ctx context.Context, uid, tokenID string) (*models.ToggleResponse, error) {
	profile, err := s.loadForToken(ctx, uid, tokenID)
	if err != nil {
		return nil, err
	}

	if !Contains(profile.OwnedTokens, tokenID) {
		profile.OwnedTokens = append(profile.OwnedTokens, tokenID)
		s.repo.SaveSets(uid, profile.Watchlist, profile.OwnedTokens)
	}
	return &models.ToggleResponse{TokenID: tokenID, Added: true, Set: profile.OwnedTokens}, nil
}

func (s *profileService) RemoveOwnedToken(ctx context.Context, uid, tokenID string) (*models.ToggleResponse, error) {
	profile, err := s.loadForToken(ctx, uid, tokenID)
	if err != nil {
		return nil, err
	}

	if Contains(profile.OwnedTokens, tokenID) {
		profile.OwnedTokens = ToggleMembership(profile.OwnedTokens, tokenID)
		s.repo.SaveSets(uid, profile.Watchlist, profile.OwnedTokens)
	}
	return &models.ToggleResponse{TokenID: tokenID, Added: false, Set: profile.OwnedTokens}, nil
}

func (s *profileService) ResolveHandle(ctx context.Context, handle string) (string, error) {
	return s.repo.ResolveHandle(ctx, normalizeHandle(handle))
}

func (s *profileService) Reset(ctx context.Context, uid string) error {
	return s.repo.Reset(ctx, uid)
}

func (s *profileService) toggle(
	ctx context.Context,
	uid, tokenID string,
	assign func(*models.UserProfile, []string),
	read func(*models.UserProfile) []string,
) (*models.ToggleResponse, error) {
	profile, err := s.loadForToken(ctx, uid, tokenID)
	if err != nil {
		return nil, err
	}

	before := read(profile)
	added := !Contains(before, tokenID)
	assign(profile, ToggleMembership(before, tokenID))
	s.repo.SaveSets(uid, profile.Watchlist, profile.OwnedTokens)

	return &models.ToggleResponse{TokenID: tokenID, Added: added, Set: read(profile)}, nil
}

func (s *profileService) loadForToken(ctx context.Context, uid, tokenID string) (*models.UserProfile, error) {
	if _, ok := s.market.ByID(tokenID); !ok {
		return nil, apperrors.NewUnknownTokenError(tokenID)
	}

	profile, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperrors.New(apperrors.ErrCodeUserNotFound, "Profile not found").WithDetail("uid", uid)
	}
	return profile, nil
}

// ToggleMembership returns a new slice with id removed when present and
// appended otherwise. Applying it twice restores the original set.
func ToggleMembership(set []string, id string) []string {
	if Contains(set, id) {
		out := make([]string, 0, len(set)-1)
		for _, v := range set {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	}

	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id)
}

// Contains reports set membership.
func Contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func normalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return handle
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return handle
}
