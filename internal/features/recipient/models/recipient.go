package models

// ListType groups recipients in the address book.
type ListType string

const (
	ListFamily  ListType = "family"
	ListFriends ListType = "friends"
	ListGeneral ListType = "general"
)

func (t ListType) Valid() bool {
	switch t {
	case ListFamily, ListFriends, ListGeneral:
		return true
	}
	return false
}

type Recipient struct {
	ID            string   `json:"id"`
	UserProfileID string   `json:"userProfileId"`
	Name          string   `json:"name"`
	Handle        string   `json:"handle"`
	ListType      ListType `json:"listType"`
}

type CreateRecipientRequest struct {
	Name     string   `json:"name" binding:"required"`
	Handle   string   `json:"handle" binding:"required"`
	ListType ListType `json:"listType"`
}
