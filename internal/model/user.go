package model

import "time"

// User represents a user account. Identity (credentials, token issuance) is
// owned by the external identity provider; this record only carries what the
// game and friend subsystems need.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	FriendCode  string    `json:"friend_code,omitempty"` // 16-digit shareable id
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// PublicUser is the representation safe to show other users
type PublicUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	FriendCode  string `json:"friend_code,omitempty"`
}

// ToPublic strips fields not meant for other users
func (u *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		FriendCode:  u.FriendCode,
	}
}
