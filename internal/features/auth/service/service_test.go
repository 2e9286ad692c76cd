package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/features/auth/models"
)

type fakeAuthRepo struct {
	accounts map[string]*models.Account
	sessions map[string]*models.Session
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		accounts: make(map[string]*models.Account),
		sessions: make(map[string]*models.Session),
	}
}

func (f *fakeAuthRepo) CreateAccount(_ context.Context, account *models.Account) error {
	f.accounts[account.Email] = account
	return nil
}

func (f *fakeAuthRepo) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	return f.accounts[email], nil
}

func (f *fakeAuthRepo) SaveSession(_ context.Context, session *models.Session, _ time.Duration) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeAuthRepo) GetSession(_ context.Context, token string) (*models.Session, error) {
	return f.sessions[token], nil
}

func (f *fakeAuthRepo) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func TestSignUpThenSignIn(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	created, err := svc.SignUp(context.Background(), models.SignUpRequest{
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "ada@example.com", created.Email)

	signed, err := svc.SignIn(context.Background(), models.SignInRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, created.UID, signed.UID)
	assert.NotEqual(t, created.Token, signed.Token, "each sign-in opens its own session")
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	req := models.SignUpRequest{Email: "ada@example.com", Password: "correct horse"}
	_, err := svc.SignUp(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), req)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeEmailTaken, appErr.Code)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)
	_, err := svc.SignUp(context.Background(), models.SignUpRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), models.SignInRequest{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidLogin, appErr.Code)
}

func TestSignInUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	_, err := svc.SignIn(context.Background(), models.SignInRequest{Email: "ghost@example.com", Password: "x"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidLogin, appErr.Code)
}

func TestValidateSessionRoundTrip(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)
	created, err := svc.SignUp(context.Background(), models.SignUpRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	session, err := svc.ValidateSession(context.Background(), created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.UID, session.UID)
	assert.Equal(t, "ada@example.com", session.Email)
}

func TestSignOutRevokesSession(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)
	created, err := svc.SignUp(context.Background(), models.SignUpRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), created.Token))

	_, err = svc.ValidateSession(context.Background(), created.Token)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSessionStale, appErr.Code)
}

func TestValidateSessionEmptyToken(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	_, err := svc.ValidateSession(context.Background(), "")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}
