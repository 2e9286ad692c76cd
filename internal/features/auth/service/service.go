package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/features/auth/models"
	"bcmoney-backend/internal/features/auth/repository"
)

type AuthService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.SessionResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error)
	SignOut(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*models.Session, error)
}

type authService struct {
	repo       repository.AuthRepository
	sessionTTL time.Duration
}

func NewAuthService(repo repository.AuthRepository, sessionTTL time.Duration) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	return &authService{repo: repo, sessionTTL: sessionTTL}
}

func (s *authService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.SessionResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Account lookup failed")
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.ErrCodeEmailTaken, "An account already exists for this email").
			WithDetail("email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Password hashing failed")
	}

	account := &models.Account{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeEmailTaken, "An account already exists for this email")
	}

	return s.openSession(ctx, account)
}

func (s *authService) SignIn(ctx context.Context, req models.SignInRequest) (*models.SessionResponse, error) {
	account, err := s.repo.GetAccountByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Account lookup failed")
	}
	if account == nil {
		return nil, invalidLogin()
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return nil, invalidLogin()
	}

	return s.openSession(ctx, account)
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// ValidateSession resolves an opaque bearer token to its session. An
// unknown or expired token yields a typed unauthorized error: the data
// layer treats that caller as having no references at all.
func (s *authService) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("missing bearer token")
	}

	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Session lookup failed")
	}
	if session == nil {
		return nil, apperrors.New(apperrors.ErrCodeSessionStale, "Session expired or revoked")
	}
	return session, nil
}

func (s *authService) openSession(ctx context.Context, account *models.Account) (*models.SessionResponse, error) {
	session := &models.Session{
		Token:     uuid.New().String(),
		UID:       account.UID,
		Email:     account.Email,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SaveSession(ctx, session, s.sessionTTL); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Session save failed")
	}

	return &models.SessionResponse{
		Token:     session.Token,
		UID:       session.UID,
		Email:     session.Email,
		ExpiresAt: session.CreatedAt.Add(s.sessionTTL),
	}, nil
}

func invalidLogin() error {
	return apperrors.New(apperrors.ErrCodeInvalidLogin, "Invalid email or password")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
