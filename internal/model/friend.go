package model

import "time"

// FriendRequestStatus represents the state of a friend request
type FriendRequestStatus string

const (
	FriendRequestPending   FriendRequestStatus = "pending"
	FriendRequestAccepted  FriendRequestStatus = "accepted"
	FriendRequestRejected  FriendRequestStatus = "rejected"
	FriendRequestCancelled FriendRequestStatus = "cancelled"
)

// Validation constants for friends
const (
	MaxRequestMessageLength = 500
	FriendCodeLength        = 16
)

// FriendRequest represents a pending or resolved friend request
type FriendRequest struct {
	ID        string              `json:"id"`
	FromUser  string              `json:"from_user"`
	ToUser    string              `json:"to_user"`
	Message   string              `json:"message,omitempty"`
	Status    FriendRequestStatus `json:"status"`
	CreatedOn time.Time           `json:"created_on"`
	UpdatedOn time.Time           `json:"updated_on"`
}

// Friendship links two users. UserA/UserB are stored in lexical order so a
// pair has exactly one record regardless of who initiated it.
type Friendship struct {
	ID        string    `json:"id"`
	UserA     string    `json:"user_a"`
	UserB     string    `json:"user_b"`
	RequestID string    `json:"request_id,omitempty"` // Request that created it
	CreatedOn time.Time `json:"created_on"`
}

// OrderPair returns the two user ids in lexical order
func OrderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Other returns the friend's user id from the viewer's perspective
func (f *Friendship) Other(userID string) string {
	if f.UserA == userID {
		return f.UserB
	}
	return f.UserA
}

// ValidFriendCode reports whether s is a well-formed friend code: exactly 16
// digits with no leading zero.
func ValidFriendCode(s string) bool {
	if len(s) != FriendCodeLength {
		return false
	}
	if s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SendFriendRequestRequest is the body for POST /v1/friends/requests.
// Exactly one of ToUser or FriendCode must be set.
type SendFriendRequestRequest struct {
	ToUser     string `json:"to_user,omitempty"`
	FriendCode string `json:"friend_code,omitempty"`
	Message    string `json:"message,omitempty"`
}

// FriendRequestList is a list of friend requests
type FriendRequestList struct {
	Requests []*FriendRequest `json:"requests"`
	Total    int              `json:"total"`
}

// FriendEntry is a friendship decorated with the friend's public profile
type FriendEntry struct {
	Friendship *Friendship `json:"friendship"`
	Friend     *PublicUser `json:"friend"`
}

// FriendList is the viewer's friendships
type FriendList struct {
	Friends []*FriendEntry `json:"friends"`
	Total   int            `json:"total"`
}

// FriendCodeResponse carries a user's shareable friend code
type FriendCodeResponse struct {
	FriendCode string `json:"friend_code"`
}
