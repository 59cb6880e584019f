package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/darematch/api/internal/middleware"
	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

const (
	// Time allowed to write a message to the peer.
	wsWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	wsPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than wsPongWait.
	wsPingPeriod = (wsPongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only send small
	// subscribe/unsubscribe frames.
	wsMaxMessageSize = 512
)

// wsClientMessage is an inbound frame from the client
type wsClientMessage struct {
	Action      string `json:"action"` // subscribe | unsubscribe
	ChallengeID string `json:"challenge_id"`
}

// wsServerMessage is an outbound frame to the client
type wsServerMessage struct {
	Type        service.EventType `json:"type"`
	ChallengeID string            `json:"challenge_id,omitempty"`
	Data        interface{}       `json:"data,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// WSHandler handles the multiplexed WebSocket feed. A connection carries the
// user's directed events and any challenge feeds the client subscribes to.
type WSHandler struct {
	eventHub         *service.EventHub
	challengeService *service.ChallengeService
	auth             middleware.AuthService
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(eventHub *service.EventHub, challengeService *service.ChallengeService, auth middleware.AuthService) *WSHandler {
	return &WSHandler{
		eventHub:         eventHub,
		challengeService: challengeService,
		auth:             auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware for
			// the rest of the API; browser WS clients are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /v1/ws.
// Browsers cannot set an Authorization header on WebSocket dials, so the
// token may also arrive as a query parameter.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		token := r.URL.Query().Get("token")
		if token == "" {
			WriteError(w, model.NewUnauthorizedError("authentication required"))
			return
		}
		claims, err := h.auth.ValidateAccessToken(token)
		if err != nil {
			WriteError(w, model.NewUnauthorizedError("invalid token"))
			return
		}
		userID = claims.UserID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &wsClient{
		handler: h,
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, 64),
		done:    make(chan struct{}),
		subs:    make(map[string]string),
	}

	userSub := h.eventHub.SubscribeUser(userID, uuid.New().String())
	client.userSubID = userSub.ID
	go client.forward(userSub)

	go client.writePump()
	client.readPump()
}

// wsClient is one connected WebSocket peer
type wsClient struct {
	handler *WSHandler
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	done    chan struct{}

	userSubID string

	mu   sync.Mutex
	subs map[string]string // challengeID -> subscriberID
}

// readPump reads subscribe/unsubscribe frames until the connection drops.
// It owns teardown: all hub subscriptions are released when it returns.
func (c *wsClient) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}

		switch msg.Action {
		case "subscribe":
			c.subscribe(msg.ChallengeID)
		case "unsubscribe":
			c.unsubscribe(msg.ChallengeID)
		default:
			c.sendError("unknown action")
		}
	}
}

// writePump drains the send channel and keeps the connection alive with pings
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// subscribe attaches the client to a challenge feed after a participation
// check, then replies with a full snapshot so the client starts from the
// current committed record.
func (c *wsClient) subscribe(challengeID string) {
	if challengeID == "" {
		c.sendError("challenge_id required")
		return
	}

	// Attach before the snapshot read. A commit landing between the two is
	// then delivered through the subscription instead of lost; a duplicate
	// delivery is harmless since events carry full records.
	c.mu.Lock()
	_, already := c.subs[challengeID]
	var sub *service.Subscriber
	if !already {
		sub = c.handler.eventHub.Subscribe(challengeID, uuid.New().String())
		c.subs[challengeID] = sub.ID
	}
	c.mu.Unlock()

	// A fresh context: the request context ended at upgrade time.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	challenge, err := c.handler.challengeService.Get(ctx, c.userID, challengeID)
	if err != nil {
		if !already {
			c.unsubscribe(challengeID)
		}
		c.sendError(MapServiceError(err).Detail)
		return
	}

	// Snapshot goes out before the forwarder starts so buffered events
	// cannot overtake it on the wire.
	c.sendEnvelope(wsServerMessage{Type: "challenge.snapshot", ChallengeID: challengeID, Data: challenge})
	if !already {
		go c.forward(sub)
	}
}

// unsubscribe detaches the client from a challenge feed
func (c *wsClient) unsubscribe(challengeID string) {
	c.mu.Lock()
	subID, ok := c.subs[challengeID]
	if ok {
		delete(c.subs, challengeID)
	}
	c.mu.Unlock()

	if ok {
		c.handler.eventHub.Unsubscribe(challengeID, subID)
	}
}

// forward relays hub events for one subscription onto the connection
func (c *wsClient) forward(sub *service.Subscriber) {
	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			c.sendEnvelope(wsServerMessage{
				Type:        event.Type,
				ChallengeID: event.ChallengeID,
				Data:        event.Data,
			})

		case <-sub.Done:
			return

		case <-c.done:
			return
		}
	}
}

// sendEnvelope marshals and queues a frame. A peer that cannot keep up is
// closed rather than allowed to block publishers.
func (c *wsClient) sendEnvelope(msg wsServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		c.close()
	}
}

func (c *wsClient) sendError(detail string) {
	c.sendEnvelope(wsServerMessage{Type: "error", Error: detail})
}

// close signals both pumps to stop
func (c *wsClient) close() {
	c.mu.Lock()
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.mu.Unlock()
}

// teardown releases every hub subscription held by this connection
func (c *wsClient) teardown() {
	c.close()

	c.handler.eventHub.UnsubscribeUser(c.userID, c.userSubID)

	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]string)
	c.mu.Unlock()

	for challengeID, subID := range subs {
		c.handler.eventHub.Unsubscribe(challengeID, subID)
	}
	_ = c.conn.Close()
}
