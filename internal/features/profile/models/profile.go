package models

import "time"

// UserProfile is the per-user root document. Created on first touch
// rather than at signup time; watchlist and ownedTokens are sets of
// catalog token ids.
// @Description Wallet user profile
type UserProfile struct {
	ID             string    `json:"id" example:"6f1c7b9a" description:"Account uid"`
	Handle         string    `json:"handle" example:"@john_doe" description:"Unique P2P handle"`
	FirstName      string    `json:"first_name" example:"John"`
	MiddleName     string    `json:"middle_name,omitempty" example:"Quincy"`
	LastName       string    `json:"last_name" example:"Doe"`
	Email          string    `json:"email" example:"john.doe@example.com"`
	Phone          string    `json:"phone,omitempty" example:"+1 (555) 000-1122"`
	PostalAddress  string    `json:"postal_address,omitempty" example:"123 Finance Way, Cryptoville, CA 90210"`
	DepositAddress string    `json:"deposit_address,omitempty" example:"0x71C7656EC7ab88b098defB751B7401B5f6d8976F"`
	Watchlist      []string  `json:"watchlist" description:"Catalog ids the user tracks"`
	OwnedTokens    []string  `json:"ownedTokens" description:"Catalog ids in the user's portfolio"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateProfileRequest carries the mutable contact fields.
type UpdateProfileRequest struct {
	Handle         string `json:"handle,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	MiddleName     string `json:"middle_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	PostalAddress  string `json:"postal_address,omitempty"`
	DepositAddress string `json:"deposit_address,omitempty"`
}

// ToggleResponse reports the watchlist or portfolio set after a toggle.
type ToggleResponse struct {
	TokenID string   `json:"token_id"`
	Added   bool     `json:"added"`
	Set     []string `json:"set"`
}
