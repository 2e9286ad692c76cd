package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/features/profile/models"
	"bcmoney-backend/internal/features/profile/repository"
	"bcmoney-backend/internal/platform/docstore"
)

// Collection layout. Profiles live at user_profiles/{uid}; balances,
// per-balance transactions and recipients nest under the profile, and
// handles/{handle} is the uniqueness index for P2P addressing.
const (
	ProfilesCollection   = "user_profiles"
	HandlesCollection    = "handles"
	BalancesCollection   = "balances"
	RecipientsCollection = "recipients"
)

type profileRepository struct {
	store *docstore.Store
}

func NewProfileRepository(store *docstore.Store) repository.ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) docRef(uid string) *docstore.DocRef {
	return r.store.Doc(ProfilesCollection, uid)
}

func (r *profileRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := r.store.Get(ctx, r.docRef(uid))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var profile models.UserProfile
	if err := doc.Decode(&profile); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidUser, "Malformed profile document").
			WithDetail("uid", uid)
	}
	profile.ID = uid
	return &profile, nil
}

func (r *profileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now()

	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	return r.store.SetMerge(ctx, r.docRef(profile.ID), fields)
}

// SaveSets pushes only the two membership sets, fire-and-forget. Toggles
// respond optimistically; a store failure surfaces on the error bus.
func (r *profileRepository) SaveSets(uid string, watchlist, ownedTokens []string) {
	r.store.SetMergeNonBlocking(r.docRef(uid), map[string]interface{}{
		"watchlist":   watchlist,
		"ownedTokens": ownedTokens,
		"updated_at":  time.Now(),
	})
}

// ClaimHandle claims the new handle with a conditional write so two
// concurrent claims on the same handle get exactly one winner. The old
// handle is released only after the claim succeeds.
func (r *profileRepository) ClaimHandle(ctx context.Context, uid, oldHandle, newHandle string) error {
	newRef := r.store.Doc(HandlesCollection, handleKey(newHandle))

	claimed, err := r.store.SetIfAbsent(ctx, newRef, map[string]interface{}{
		"uid":    uid,
		"handle": newHandle,
	})
	if err != nil {
		return err
	}
	if !claimed {
		existing, err := r.store.Get(ctx, newRef)
		if err != nil {
			return err
		}
		var owner struct {
			UID string `json:"uid"`
		}
		if existing == nil || existing.Decode(&owner) != nil || owner.UID != uid {
			return apperrors.New(apperrors.ErrCodeHandleTaken, "Handle is already taken").
				WithDetail("handle", newHandle)
		}
	}

	if oldHandle != "" && handleKey(oldHandle) != handleKey(newHandle) {
		return r.store.Delete(ctx, r.store.Doc(HandlesCollection, handleKey(oldHandle)))
	}
	return nil
}

func (r *profileRepository) ResolveHandle(ctx context.Context, handle string) (string, error) {
	doc, err := r.store.Get(ctx, r.store.Doc(HandlesCollection, handleKey(handle)))
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", apperrors.NewNotFoundError("handle", handle)
	}

	var owner struct {
		UID string `json:"uid"`
	}
	if err := doc.Decode(&owner); err != nil {
		return "", err
	}
	return owner.UID, nil
}

// Reset removes the profile document together with every subcollection:
// balances (and each balance's transactions), recipients, and the
// handle index entry.
func (r *profileRepository) Reset(ctx context.Context, uid string) error {
	profile, err := r.Get(ctx, uid)
	if err != nil {
		return err
	}

	balances := r.store.Collection(ProfilesCollection, uid, BalancesCollection)
	docs, err := r.store.List(ctx, balances, docstore.ListOptions{})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		txns := r.store.Collection(ProfilesCollection, uid, BalancesCollection, doc.ID, "transactions")
		if err := r.store.DeleteCollection(ctx, txns); err != nil {
			return err
		}
	}
	if err := r.store.DeleteCollection(ctx, balances); err != nil {
		return err
	}

	recipients := r.store.Collection(ProfilesCollection, uid, RecipientsCollection)
	if err := r.store.DeleteCollection(ctx, recipients); err != nil {
		return err
	}

	batch := r.store.NewBatch().Delete(r.docRef(uid))
	if profile != nil && profile.Handle != "" {
		batch.Delete(r.store.Doc(HandlesCollection, handleKey(profile.Handle)))
	}
	return batch.Commit(ctx)
}

func handleKey(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
