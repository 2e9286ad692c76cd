package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/features/recipient/models"
)

type fakeRecipientRepo struct {
	byUser map[string][]models.Recipient
}

func newFakeRecipientRepo() *fakeRecipientRepo {
	return &fakeRecipientRepo{byUser: make(map[string][]models.Recipient)}
}

func (f *fakeRecipientRepo) List(_ context.Context, uid string) ([]models.Recipient, error) {
	return f.byUser[uid], nil
}

func (f *fakeRecipientRepo) Add(_ context.Context, uid string, recipient *models.Recipient) error {
	recipient.ID = uuid.New().String()
	recipient.UserProfileID = uid
	f.byUser[uid] = append(f.byUser[uid], *recipient)
	return nil
}

func (f *fakeRecipientRepo) Delete(_ context.Context, uid, id string) error {
	kept := f.byUser[uid][:0]
	for _, r := range f.byUser[uid] {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.byUser[uid] = kept
	return nil
}

func TestCreateNormalizesHandle(t *testing.T) {
	svc := NewRecipientService(newFakeRecipientRepo())

	created, err := svc.Create(context.Background(), "u1", models.CreateRecipientRequest{
		Name:   "Alice",
		Handle: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "@alice", created.Handle)
	assert.Equal(t, models.ListGeneral, created.ListType, "listType defaults to general")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UserProfileID)
}

func TestCreateKeepsExistingAtPrefix(t *testing.T) {
	svc := NewRecipientService(newFakeRecipientRepo())

	created, err := svc.Create(context.Background(), "u1", models.CreateRecipientRequest{
		Name:     "Bob",
		Handle:   "@bob",
		ListType: models.ListFamily,
	})
	require.NoError(t, err)
	assert.Equal(t, "@bob", created.Handle)
	assert.Equal(t, models.ListFamily, created.ListType)
}

func TestCreateRejectsBadListType(t *testing.T) {
	svc := NewRecipientService(newFakeRecipientRepo())

	_, err := svc.Create(context.Background(), "u1", models.CreateRecipientRequest{
		Name:     "Alice",
		Handle:   "@alice",
		ListType: "enemies",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestCreateRejectsEmptyFields(t *testing.T) {
	svc := NewRecipientService(newFakeRecipientRepo())

	_, err := svc.Create(context.Background(), "u1", models.CreateRecipientRequest{Name: "  ", Handle: "@alice"})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), "u1", models.CreateRecipientRequest{Name: "Alice", Handle: " @ "})
	assert.Error(t, err)
}

func TestDeleteRemovesRecipient(t *testing.T) {
	repo := newFakeRecipientRepo()
	svc := NewRecipientService(repo)

	created, err := svc.Create(context.Background(), "u1", models.CreateRecipientRequest{Name: "Alice", Handle: "@alice"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", created.ID))

	left, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, left)
}
