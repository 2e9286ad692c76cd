package redis

import (
	"context"

	profilerepo "bcmoney-backend/internal/features/profile/repository/redis"
	"bcmoney-backend/internal/features/recipient/models"
	"bcmoney-backend/internal/features/recipient/repository"
	"bcmoney-backend/internal/platform/docstore"
)

type recipientRepository struct {
	store *docstore.Store
}

func NewRecipientRepository(store *docstore.Store) repository.RecipientRepository {
	return &recipientRepository{store: store}
}

func (r *recipientRepository) collection(uid string) *docstore.CollectionRef {
	return r.store.Collection(profilerepo.ProfilesCollection, uid, profilerepo.RecipientsCollection)
}

func (r *recipientRepository) List(ctx context.Context, uid string) ([]models.Recipient, error) {
	docs, err := r.store.List(ctx, r.collection(uid), docstore.ListOptions{OrderBy: "name"})
	if err != nil {
		return nil, err
	}

	recipients := make([]models.Recipient, 0, len(docs))
	for _, doc := range docs {
		var recipient models.Recipient
		if err := doc.Decode(&recipient); err != nil {
			continue
		}
		recipient.ID = doc.ID
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

func (r *recipientRepository) Add(ctx context.Context, uid string, recipient *models.Recipient) error {
	recipient.UserProfileID = uid

	ref, err := r.store.Add(ctx, r.collection(uid), map[string]interface{}{
		"userProfileId": recipient.UserProfileID,
		"name":          recipient.Name,
		"handle":        recipient.Handle,
		"listType":      recipient.ListType,
	})
	if err != nil {
		return err
	}
	recipient.ID = ref.ID()
	return nil
}

func (r *recipientRepository) Delete(ctx context.Context, uid, id string) error {
	return r.store.Delete(ctx, r.store.Doc(profilerepo.ProfilesCollection, uid, profilerepo.RecipientsCollection, id))
}
