package service

import (
	"encoding/json"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// Challenge events. Each carries the full updated challenge record.
	EventChallengeCreated   EventType = "challenge.created"
	EventChallengeAccepted  EventType = "challenge.accepted"
	EventChallengeRejected  EventType = "challenge.rejected"
	EventNumberSubmitted    EventType = "challenge.number_submitted"
	EventChallengeCompleted EventType = "challenge.completed"

	// Friend events
	EventFriendRequest  EventType = "friend.request"
	EventFriendAccepted EventType = "friend.accepted"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// Event represents a change-feed event. Data is always a full snapshot of
// the affected record; clients never have to reconstruct state from diffs.
type Event struct {
	Type        EventType   `json:"type"`
	Data        interface{} `json:"data"`
	ChallengeID string      `json:"-"` // Used for routing, not sent to client
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected change-feed client
type Subscriber struct {
	ID          string
	ChallengeID string
	Events      chan *Event
	Done        chan struct{}

	dropOnce sync.Once
}

// Drop signals the subscriber's stream to end. A client whose buffer
// overflows is dropped rather than served a gapped feed; it reconnects and
// refetches the current record.
func (s *Subscriber) Drop() {
	s.dropOnce.Do(func() {
		close(s.Done)
	})
}

// EventHub manages change-feed subscriptions and event broadcasting.
//
// There is no replay: a subscriber receives only events committed after its
// subscription is registered. Ordering per challenge is the caller's
// responsibility; ChallengeService publishes while holding the challenge's
// commit lock, so deliveries observe commit order.
type EventHub struct {
	mu              sync.RWMutex
	subscribers     map[string]map[string]*Subscriber // challengeID -> subscriberID -> subscriber
	userSubscribers map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat       *time.Ticker
	done            chan struct{}
}

// NewEventHub creates a new event hub. Heartbeats at the given interval keep
// idle streams from being reaped by intermediaries.
func NewEventHub(heartbeatInterval time.Duration) *EventHub {
	hub := &EventHub{
		subscribers:     make(map[string]map[string]*Subscriber),
		userSubscribers: make(map[string]map[string]*Subscriber),
		done:            make(chan struct{}),
	}
	hub.heartbeat = time.NewTicker(heartbeatInterval)
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber for a challenge
func (h *EventHub) Subscribe(challengeID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:          subscriberID,
		ChallengeID: challengeID,
		Events:      make(chan *Event, 100), // Buffer to absorb bursts
		Done:        make(chan struct{}),
	}

	if h.subscribers[challengeID] == nil {
		h.subscribers[challengeID] = make(map[string]*Subscriber)
	}
	h.subscribers[challengeID][subscriberID] = sub

	return sub
}

// Unsubscribe removes a subscriber
func (h *EventHub) Unsubscribe(challengeID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if challengeSubs, ok := h.subscribers[challengeID]; ok {
		if sub, ok := challengeSubs[subscriberID]; ok {
			sub.Drop()
			close(sub.Events)
			delete(challengeSubs, subscriberID)
		}
		if len(challengeSubs) == 0 {
			delete(h.subscribers, challengeID)
		}
	}
}

// Publish sends an event to all subscribers of a challenge. A subscriber
// whose buffer is full is dropped: silently skipping would create a gap in
// its feed, and the feed contract is no gaps within a subscription.
func (h *EventHub) Publish(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	challengeSubs, ok := h.subscribers[event.ChallengeID]
	if !ok {
		return
	}

	for _, sub := range challengeSubs {
		select {
		case sub.Events <- event:
		default:
			sub.Drop()
		}
	}
}

// SubscribeUser adds a new subscriber for a specific user (for incoming
// challenges, friend requests, completions)
func (h *EventHub) SubscribeUser(userID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		Events: make(chan *Event, 100),
		Done:   make(chan struct{}),
	}

	if h.userSubscribers[userID] == nil {
		h.userSubscribers[userID] = make(map[string]*Subscriber)
	}
	h.userSubscribers[userID][subscriberID] = sub

	return sub
}

// UnsubscribeUser removes a user subscriber
func (h *EventHub) UnsubscribeUser(userID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userSubs, ok := h.userSubscribers[userID]; ok {
		if sub, ok := userSubs[subscriberID]; ok {
			sub.Drop()
			close(sub.Events)
			delete(userSubs, subscriberID)
		}
		if len(userSubs) == 0 {
			delete(h.userSubscribers, userID)
		}
	}
}

// SendToUser sends an event to all subscribers of a specific user
func (h *EventHub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userSubs, ok := h.userSubscribers[userID]
	if !ok {
		return
	}

	for _, sub := range userSubs {
		select {
		case sub.Events <- &event:
		default:
			sub.Drop()
		}
	}
}

// sendHeartbeats sends periodic heartbeats to all subscribers
func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.mu.RLock()
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			for _, challengeSubs := range h.subscribers {
				for _, sub := range challengeSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			for _, userSubs := range h.userSubscribers {
				for _, sub := range userSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the event hub
func (h *EventHub) Close() {
	close(h.done)
	h.heartbeat.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	for challengeID, challengeSubs := range h.subscribers {
		for _, sub := range challengeSubs {
			sub.Drop()
			close(sub.Events)
		}
		delete(h.subscribers, challengeID)
	}
	for userID, userSubs := range h.userSubscribers {
		for _, sub := range userSubs {
			sub.Drop()
			close(sub.Events)
		}
		delete(h.userSubscribers, userID)
	}
}

// SubscriberCount returns the number of subscribers for a challenge
func (h *EventHub) SubscriberCount(challengeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if challengeSubs, ok := h.subscribers[challengeID]; ok {
		return len(challengeSubs)
	}
	return 0
}
