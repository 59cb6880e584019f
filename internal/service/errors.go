package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Challenge Errors =====
var (
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrNotParticipant      = errors.New("not a participant of this challenge")
	ErrNotRecipient        = errors.New("only the challenged user can respond")
	ErrInvalidTransition   = errors.New("operation not valid in the challenge's current state")
	ErrInvalidRange        = errors.New("range must satisfy 1 <= min < max")
	ErrNumberOutOfRange    = errors.New("number is outside the agreed range")
	ErrSelfChallenge       = errors.New("cannot challenge yourself")
	ErrRecipientRequired   = errors.New("recipient is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrConcurrentUpdate    = errors.New("challenge was modified concurrently, retries exhausted")
	ErrInvalidDirection    = errors.New("invalid direction filter")
	ErrInvalidStatusFilter = errors.New("invalid status filter")
	ErrChallengeNotFriends = errors.New("can only challenge friends")
	ErrRecipientNotFound   = errors.New("challenged user not found")
)

// ===== Friend Errors =====
var (
	ErrFriendRequestNotFound  = errors.New("friend request not found")
	ErrFriendNotFound         = errors.New("friendship not found")
	ErrCannotFriendSelf       = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends         = errors.New("already friends")
	ErrRequestAlreadyPending  = errors.New("a friend request is already pending")
	ErrRequestNotPending      = errors.New("friend request already resolved")
	ErrNotRequestRecipient    = errors.New("only the recipient can respond to a request")
	ErrNotRequestSender       = errors.New("only the sender can cancel a request")
	ErrInvalidFriendCode      = errors.New("invalid friend code")
	ErrFriendCodeNotFound     = errors.New("no user with this friend code")
	ErrFriendTargetRequired   = errors.New("either to_user or friend_code is required")
	ErrFriendTargetAmbiguous  = errors.New("provide to_user or friend_code, not both")
	ErrMessageTooLong         = errors.New("message exceeds maximum length")
	ErrFriendCodeExhausted    = errors.New("could not generate a unique friend code")
	ErrFriendCodeQRGeneration = errors.New("could not render friend code QR")
)

// ===== User Errors =====
var (
	ErrUserNotFound = errors.New("user not found")
)
