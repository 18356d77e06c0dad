package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/aurayouth/server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024

	// Bound on how long one message may spend in the pipeline.
	processTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients, keyed by user ID.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	chat   *usecase.ChatService
	logger *zap.Logger
}

// NewHub creates a new WebSocket hub backed by the chat pipeline.
func NewHub(chat *usecase.ChatService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		chat:       chat,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			// A reconnect for the same user replaces the map entry; only the
			// client that still owns it may remove it.
			if h.clients[client.userID] == client {
				delete(h.clients, client.userID)
			}
			close(client.send)
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("user_id", client.userID))
		}
	}
}

// SendToUser delivers a frame to a connected user, if any. The send happens
// under the lock so the channel cannot be closed out from under it.
func (h *Hub) SendToUser(userID string, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// PushBotMessage mirrors a pipeline result to the user's live WebSocket
// session, if one is connected. The REST chat handlers call this so an open
// session sees replies regardless of which transport carried the request.
func (h *Hub) PushBotMessage(userID string, result usecase.ChatResult) bool {
	payload, err := json.Marshal(NewBotMessage(
		result.Response,
		result.Emotion,
		result.Confidence,
		result.CrisisDetected,
		result.CrisisType,
	))
	if err != nil {
		h.logger.Error("Failed to marshal bot message", zap.Error(err))
		return false
	}
	return h.SendToUser(userID, payload)
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	userID string

	logger *zap.Logger
}

// HandleWebSocketWithAuth handles websocket requests with a pre-authenticated user ID.
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, userID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		logger: logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection into the chat pipeline.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage runs one inbound chat message through the pipeline and
// queues the reply.
func (c *Client) processMessage(data []byte) {
	msg, err := ParseInboundMessage(data)
	if err != nil {
		c.logger.Warn("Failed to parse message",
			zap.String("user_id", c.userID),
			zap.Error(err))
		c.enqueue(NewErrorMessage("invalid message format"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	result := c.hub.chat.ProcessMessage(ctx, usecase.ChatRequest{
		UserID:  c.userID,
		Message: msg.Message,
	})

	c.logger.Info("Chat message processed",
		zap.String("user_id", c.userID),
		zap.String("emotion", string(result.Emotion)),
		zap.Bool("crisis", result.CrisisDetected))

	c.enqueue(NewBotMessage(
		result.Response,
		result.Emotion,
		result.Confidence,
		result.CrisisDetected,
		result.CrisisType,
	))
}

func (c *Client) enqueue(frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("Failed to marshal frame", zap.Error(err))
		return
	}

	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Dropping frame for slow client",
			zap.String("user_id", c.userID))
	}
}
