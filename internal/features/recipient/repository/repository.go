package repository

import (
	"context"

	"bcmoney-backend/internal/features/recipient/models"
)

// RecipientRepository stores the caller's saved-recipient address book.
type RecipientRepository interface {
	// List returns all saved recipients for the user.
	List(ctx context.Context, uid string) ([]models.Recipient, error)

	// Add persists a new recipient and returns it with its generated id.
	Add(ctx context.Context, uid string, recipient *models.Recipient) error

	// Delete removes one recipient. Deleting an absent id is not an error.
	Delete(ctx context.Context, uid, id string) error
}
