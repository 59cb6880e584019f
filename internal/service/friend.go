package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/model"
)

// friendCodeAttempts bounds collision retries during code generation. With
// 9*10^15 possible codes a collision is already vanishingly rare.
const friendCodeAttempts = 5

// friendQRSize is the pixel width of the rendered friend code QR image
const friendQRSize = 256

// FriendRepository defines the interface for friend storage
type FriendRepository interface {
	CreateRequest(ctx context.Context, request *model.FriendRequest) error
	GetRequestByID(ctx context.Context, id string) (*model.FriendRequest, error)
	GetPendingRequestBetween(ctx context.Context, userA, userB string) (*model.FriendRequest, error)
	ListRequestsForUser(ctx context.Context, userID string, incoming bool) ([]*model.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status model.FriendRequestStatus) error
	AcceptRequest(ctx context.Context, request *model.FriendRequest) error
	GetFriendship(ctx context.Context, userA, userB string) (*model.Friendship, error)
	ListFriendships(ctx context.Context, userID string) ([]*model.Friendship, error)
	DeleteFriendship(ctx context.Context, userA, userB string) error
}

// FriendUserRepository is the slice of user storage the friend service needs
type FriendUserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByFriendCode(ctx context.Context, code string) (*model.User, error)
	FriendCodeExists(ctx context.Context, code string) (bool, error)
	SetFriendCode(ctx context.Context, userID, code string) error
}

// FriendService handles friend request and friendship business logic
type FriendService struct {
	friendRepo FriendRepository
	userRepo   FriendUserRepository
	hub        *EventHub
}

// FriendServiceConfig holds configuration for the friend service
type FriendServiceConfig struct {
	FriendRepo FriendRepository
	UserRepo   FriendUserRepository
	Hub        *EventHub
}

// NewFriendService creates a new friend service
func NewFriendService(cfg FriendServiceConfig) *FriendService {
	return &FriendService{
		friendRepo: cfg.FriendRepo,
		userRepo:   cfg.UserRepo,
		hub:        cfg.Hub,
	}
}

// AreFriends reports whether two users share a friendship. Implements
// FriendChecker for the challenge engine.
func (s *FriendService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	friendship, err := s.friendRepo.GetFriendship(ctx, userA, userB)
	if err != nil {
		return false, err
	}
	return friendship != nil, nil
}

// GetFriendCode returns the user's shareable code, generating one the first
// time it is requested.
func (s *FriendService) GetFriendCode(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.FriendCode != "" {
		return user.FriendCode, nil
	}
	return s.assignFriendCode(ctx, userID)
}

// RegenerateFriendCode replaces the user's code. The old code stops
// resolving immediately.
func (s *FriendService) RegenerateFriendCode(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	return s.assignFriendCode(ctx, userID)
}

// FriendCodeQR renders the user's friend code as a PNG QR image
func (s *FriendService) FriendCodeQR(ctx context.Context, userID string) ([]byte, error) {
	code, err := s.GetFriendCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(code, qrcode.Medium, friendQRSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFriendCodeQRGeneration, err)
	}
	return png, nil
}

// LookupByCode resolves a friend code to its owner's public profile
func (s *FriendService) LookupByCode(ctx context.Context, code string) (*model.PublicUser, error) {
	if !model.ValidFriendCode(code) {
		return nil, ErrInvalidFriendCode
	}

	user, err := s.userRepo.GetByFriendCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrFriendCodeNotFound
	}
	return user.ToPublic(), nil
}

// SendRequest creates a friend request addressed either by user id or by
// friend code. If the other party already has a pending request toward the
// sender, the two requests are collapsed: the existing one is accepted.
func (s *FriendService) SendRequest(ctx context.Context, fromUser string, req *model.SendFriendRequestRequest) (*model.FriendRequest, error) {
	if req.ToUser == "" && req.FriendCode == "" {
		return nil, ErrFriendTargetRequired
	}
	if req.ToUser != "" && req.FriendCode != "" {
		return nil, ErrFriendTargetAmbiguous
	}

	message := strings.TrimSpace(req.Message)
	if len(message) > model.MaxRequestMessageLength {
		return nil, ErrMessageTooLong
	}

	toUser := req.ToUser
	if toUser == "" {
		target, err := s.LookupByCode(ctx, req.FriendCode)
		if err != nil {
			return nil, err
		}
		toUser = target.ID
	} else {
		target, err := s.userRepo.GetByID(ctx, toUser)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, ErrUserNotFound
		}
	}

	if toUser == fromUser {
		return nil, ErrCannotFriendSelf
	}

	friendship, err := s.friendRepo.GetFriendship(ctx, fromUser, toUser)
	if err != nil {
		return nil, err
	}
	if friendship != nil {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.friendRepo.GetPendingRequestBetween(ctx, fromUser, toUser)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		if pending.FromUser == fromUser {
			return nil, ErrRequestAlreadyPending
		}
		// Mutual interest; accept the existing request instead.
		return pending, s.accept(ctx, pending)
	}

	request := &model.FriendRequest{
		FromUser: fromUser,
		ToUser:   toUser,
		Message:  message,
		Status:   model.FriendRequestPending,
	}
	if err := s.friendRepo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.SendToUser(toUser, Event{Type: EventFriendRequest, Data: request})
	}
	return request, nil
}

// AcceptRequest accepts a pending request addressed to userID
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requestID string) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrFriendRequestNotFound
	}
	if request.ToUser != userID {
		return ErrNotRequestRecipient
	}
	if request.Status != model.FriendRequestPending {
		return ErrRequestNotPending
	}

	return s.accept(ctx, request)
}

// RejectRequest declines a pending request addressed to userID
func (s *FriendService) RejectRequest(ctx context.Context, userID, requestID string) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrFriendRequestNotFound
	}
	if request.ToUser != userID {
		return ErrNotRequestRecipient
	}
	if request.Status != model.FriendRequestPending {
		return ErrRequestNotPending
	}

	return s.friendRepo.UpdateRequestStatus(ctx, requestID, model.FriendRequestRejected)
}

// CancelRequest withdraws a pending request sent by userID
func (s *FriendService) CancelRequest(ctx context.Context, userID, requestID string) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrFriendRequestNotFound
	}
	if request.FromUser != userID {
		return ErrNotRequestSender
	}
	if request.Status != model.FriendRequestPending {
		return ErrRequestNotPending
	}

	return s.friendRepo.UpdateRequestStatus(ctx, requestID, model.FriendRequestCancelled)
}

// ListRequests retrieves the user's pending requests in one direction
func (s *FriendService) ListRequests(ctx context.Context, userID string, incoming bool) (*model.FriendRequestList, error) {
	requests, err := s.friendRepo.ListRequestsForUser(ctx, userID, incoming)
	if err != nil {
		return nil, err
	}
	return &model.FriendRequestList{
		Requests: requests,
		Total:    len(requests),
	}, nil
}

// ListFriends retrieves the user's friendships with each friend's public
// profile attached. A friendship whose user record has vanished is skipped
// rather than failing the whole list.
func (s *FriendService) ListFriends(ctx context.Context, userID string) (*model.FriendList, error) {
	friendships, err := s.friendRepo.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.FriendEntry, 0, len(friendships))
	for _, friendship := range friendships {
		friend, err := s.userRepo.GetByID(ctx, friendship.Other(userID))
		if err != nil {
			return nil, err
		}
		if friend == nil {
			continue
		}
		entries = append(entries, &model.FriendEntry{
			Friendship: friendship,
			Friend:     friend.ToPublic(),
		})
	}

	return &model.FriendList{
		Friends: entries,
		Total:   len(entries),
	}, nil
}

// RemoveFriend deletes the friendship between userID and friendID
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.friendRepo.DeleteFriendship(ctx, userID, friendID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrFriendNotFound
		}
		return err
	}
	return nil
}

// accept resolves a pending request and creates the friendship
func (s *FriendService) accept(ctx context.Context, request *model.FriendRequest) error {
	if err := s.friendRepo.AcceptRequest(ctx, request); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return ErrAlreadyFriends
		}
		return err
	}

	if s.hub != nil {
		s.hub.SendToUser(request.FromUser, Event{Type: EventFriendAccepted, Data: request})
	}
	return nil
}

// assignFriendCode generates a fresh unique code and stores it
func (s *FriendService) assignFriendCode(ctx context.Context, userID string) (string, error) {
	for attempt := 0; attempt < friendCodeAttempts; attempt++ {
		code, err := generateFriendCode()
		if err != nil {
			return "", err
		}

		exists, err := s.userRepo.FriendCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		if err := s.userRepo.SetFriendCode(ctx, userID, code); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				continue
			}
			return "", err
		}
		return code, nil
	}
	return "", ErrFriendCodeExhausted
}

// generateFriendCode produces 16 crypto-random digits with no leading zero
func generateFriendCode() (string, error) {
	var sb strings.Builder
	sb.Grow(model.FriendCodeLength)

	first, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		return "", err
	}
	sb.WriteByte(byte('1' + first.Int64()))

	for i := 1; i < model.FriendCodeLength; i++ {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + digit.Int64()))
	}
	return sb.String(), nil
}
