package service

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/model"
)

// maxMutationRetries bounds the read-validate-write loop. A conflict means
// another writer committed between our read and our write; re-reading picks
// up their result. Exhausting the budget surfaces as ErrConcurrentUpdate.
const maxMutationRetries = 5

// commitLockStripes sizes the striped lock table that serializes
// commit+publish per challenge.
const commitLockStripes = 64

// ChallengeRepository defines the interface for challenge storage
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	GetByID(ctx context.Context, id string) (*model.Challenge, error)
	CompareAndUpdate(ctx context.Context, challenge *model.Challenge) error
	ListForUser(ctx context.Context, userID string, status *model.ChallengeStatus, direction model.ChallengeDirection, limit, offset int) ([]*model.Challenge, error)
	CountForUser(ctx context.Context, userID string, status *model.ChallengeStatus, direction model.ChallengeDirection) (int, error)
}

// ChallengeUserRepository is the slice of user storage the engine needs
type ChallengeUserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// FriendChecker reports whether two users are friends
type FriendChecker interface {
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
}

// ChallengeService is the game engine. It owns the challenge state machine
// and resolves the match once both numbers are committed.
type ChallengeService struct {
	challengeRepo ChallengeRepository
	userRepo      ChallengeUserRepository
	friends       FriendChecker
	hub           *EventHub

	// Striped per-challenge locks spanning read-validate-write-publish.
	// The version guard on the write protects against writers in other
	// processes; the lock additionally guarantees that events for one
	// challenge reach the hub in commit order.
	commitLocks [commitLockStripes]sync.Mutex
}

// ChallengeServiceConfig holds configuration for the challenge service
type ChallengeServiceConfig struct {
	ChallengeRepo ChallengeRepository
	UserRepo      ChallengeUserRepository
	Friends       FriendChecker
	Hub           *EventHub
}

// NewChallengeService creates a new challenge service
func NewChallengeService(cfg ChallengeServiceConfig) *ChallengeService {
	return &ChallengeService{
		challengeRepo: cfg.ChallengeRepo,
		userRepo:      cfg.UserRepo,
		friends:       cfg.Friends,
		hub:           cfg.Hub,
	}
}

// Propose creates a new challenge from fromUser to the requested recipient
func (s *ChallengeService) Propose(ctx context.Context, fromUser string, req *model.ProposeChallengeRequest) (*model.ChallengeView, error) {
	description := strings.TrimSpace(req.Description)
	if req.ToUser == "" {
		return nil, ErrRecipientRequired
	}
	if req.ToUser == fromUser {
		return nil, ErrSelfChallenge
	}
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if len(description) > model.MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	recipient, err := s.userRepo.GetByID(ctx, req.ToUser)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}

	friends, err := s.friends.AreFriends(ctx, fromUser, req.ToUser)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, ErrChallengeNotFriends
	}

	challenge := &model.Challenge{
		FromUser:    fromUser,
		ToUser:      req.ToUser,
		Description: description,
		Status:      model.ChallengeStatusPending,
		Numbers:     map[string]int{},
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	s.notify(EventChallengeCreated, challenge, fromUser)
	return s.view(challenge, fromUser), nil
}

// Get retrieves a challenge as seen by userID
func (s *ChallengeService) Get(ctx context.Context, userID, challengeID string) (*model.ChallengeView, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, ErrChallengeNotFound
	}
	if !challenge.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return s.view(challenge, userID), nil
}

// List retrieves the user's challenges, newest first
func (s *ChallengeService) List(ctx context.Context, userID string, status *model.ChallengeStatus, direction model.ChallengeDirection, page, perPage int) (*model.ChallengeList, error) {
	if direction == "" {
		direction = model.ChallengeDirectionAll
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	challenges, err := s.challengeRepo.ListForUser(ctx, userID, status, direction, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	total, err := s.challengeRepo.CountForUser(ctx, userID, status, direction)
	if err != nil {
		return nil, err
	}

	views := make([]*model.ChallengeView, 0, len(challenges))
	for _, challenge := range challenges {
		views = append(views, s.view(challenge, userID))
	}

	return &model.ChallengeList{
		Challenges: views,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// Accept commits the recipient's range choice and opens number submission
func (s *ChallengeService) Accept(ctx context.Context, userID, challengeID string, rng model.ChallengeRange) (*model.ChallengeView, error) {
	if !rng.Valid() {
		return nil, ErrInvalidRange
	}

	return s.mutate(ctx, userID, challengeID, func(c *model.Challenge) (EventType, error) {
		if c.Status != model.ChallengeStatusPending {
			return "", ErrInvalidTransition
		}
		if userID != c.ToUser {
			return "", ErrNotRecipient
		}

		r := rng
		c.Status = model.ChallengeStatusAccepted
		c.Range = &r
		return EventChallengeAccepted, nil
	})
}

// Reject declines a pending challenge. Terminal: a rejected challenge never
// reopens.
func (s *ChallengeService) Reject(ctx context.Context, userID, challengeID string) (*model.ChallengeView, error) {
	return s.mutate(ctx, userID, challengeID, func(c *model.Challenge) (EventType, error) {
		if c.Status != model.ChallengeStatusPending {
			return "", ErrInvalidTransition
		}
		if userID != c.ToUser {
			return "", ErrNotRecipient
		}

		c.Status = model.ChallengeStatusRejected
		return EventChallengeRejected, nil
	})
}

// SubmitNumber records the caller's pick. The first submission moves the
// challenge to active; the second resolves the match and completes it.
// Resubmitting is an idempotent no-op: the first committed value stands, even
// if the new value differs.
func (s *ChallengeService) SubmitNumber(ctx context.Context, userID, challengeID string, value int) (*model.ChallengeView, error) {
	return s.mutate(ctx, userID, challengeID, func(c *model.Challenge) (EventType, error) {
		if c.Status != model.ChallengeStatusAccepted && c.Status != model.ChallengeStatusActive {
			return "", ErrInvalidTransition
		}
		if c.HasNumber(userID) {
			return "", nil
		}
		if c.Range == nil || !c.Range.Contains(value) {
			return "", ErrNumberOutOfRange
		}

		c.Numbers[userID] = value

		if !c.BothNumbersIn() {
			c.Status = model.ChallengeStatusActive
			return EventNumberSubmitted, nil
		}

		result := model.ChallengeResultNoMatch
		if c.Numbers[c.FromUser] == c.Numbers[c.ToUser] {
			result = model.ChallengeResultMatch
		}
		now := time.Now().UTC()
		c.Status = model.ChallengeStatusCompleted
		c.Result = &result
		c.CompletedOn = &now
		return EventChallengeCompleted, nil
	})
}

// mutate runs one state transition as a read-validate-write cycle under the
// challenge's commit lock. apply works on a clone and returns the event to
// publish, or "" for a validated no-op that should not write or notify.
// Version conflicts re-read and retry up to maxMutationRetries.
func (s *ChallengeService) mutate(ctx context.Context, userID, challengeID string, apply func(c *model.Challenge) (EventType, error)) (*model.ChallengeView, error) {
	lock := s.lockFor(challengeID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		current, err := s.challengeRepo.GetByID(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrChallengeNotFound
		}
		if !current.IsParticipant(userID) {
			return nil, ErrNotParticipant
		}

		next := current.Clone()
		eventType, err := apply(next)
		if err != nil {
			return nil, err
		}
		if eventType == "" {
			return s.view(current, userID), nil
		}

		if err := s.challengeRepo.CompareAndUpdate(ctx, next); err != nil {
			if errors.Is(err, database.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		s.notify(eventType, next, userID)
		return s.view(next, userID), nil
	}

	return nil, ErrConcurrentUpdate
}

// notify publishes the committed record to the challenge's feed and pushes a
// user-directed copy to the actor's opponent.
func (s *ChallengeService) notify(eventType EventType, challenge *model.Challenge, actorID string) {
	if s.hub == nil {
		return
	}

	s.hub.Publish(&Event{
		Type:        eventType,
		ChallengeID: challenge.ID,
		Data:        challenge,
	})

	if opponent := challenge.Opponent(actorID); opponent != "" {
		s.hub.SendToUser(opponent, Event{
			Type:        eventType,
			ChallengeID: challenge.ID,
			Data:        s.view(challenge, opponent),
		})
	}
}

// view decorates a challenge with the viewer's derived phase
func (s *ChallengeService) view(challenge *model.Challenge, viewerID string) *model.ChallengeView {
	return &model.ChallengeView{
		Challenge: challenge,
		Phase:     model.PhaseFor(challenge, viewerID, false),
	}
}

func (s *ChallengeService) lockFor(challengeID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(challengeID))
	return &s.commitLocks[h.Sum32()%commitLockStripes]
}
