package service

import (
	"context"
	"strings"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/features/recipient/models"
	"bcmoney-backend/internal/features/recipient/repository"
)

type RecipientService interface {
	List(ctx context.Context, uid string) ([]models.Recipient, error)
	Create(ctx context.Context, uid string, req models.CreateRecipientRequest) (*models.Recipient, error)
	Delete(ctx context.Context, uid, id string) error
}

type recipientService struct {
	repo repository.RecipientRepository
}

func NewRecipientService(repo repository.RecipientRepository) RecipientService {
	return &recipientService{repo: repo}
}

func (s *recipientService) List(ctx context.Context, uid string) ([]models.Recipient, error) {
	return s.repo.List(ctx, uid)
}

func (s *recipientService) Create(ctx context.Context, uid string, req models.CreateRecipientRequest) (*models.Recipient, error) {
	listType := req.ListType
	if listType == "" {
		listType = models.ListGeneral
	}
	if !listType.Valid() {
		return nil, apperrors.NewValidationError("listType", "must be family, friends or general")
	}

	recipient := &models.Recipient{
		Name:     strings.TrimSpace(req.Name),
		Handle:   normalizeHandle(req.Handle),
		ListType: listType,
	}
	if recipient.Name == "" {
		return nil, apperrors.NewValidationError("name", "must not be empty")
	}
	if recipient.Handle == "@" {
		return nil, apperrors.NewValidationError("handle", "must not be empty")
	}

	if err := s.repo.Add(ctx, uid, recipient); err != nil {
		return nil, err
	}
	return recipient, nil
}

func (s *recipientService) Delete(ctx context.Context, uid, id string) error {
	return s.repo.Delete(ctx, uid, id)
}

func normalizeHandle(handle string) string {
	return "@" + strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
