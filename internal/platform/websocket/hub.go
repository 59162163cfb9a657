// Package websocket pushes live updates to dashboard clients. Clients
// subscribe to topics and receive every event broadcast to them.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/platform/gateway"
)

// Topics clients may subscribe to.
const (
	TopicNotices   = "notices"
	TopicDashboard = "dashboard"
)

// DefaultTopics are subscribed on connect when the client names none.
var DefaultTopics = []string{TopicNotices, TopicDashboard}

// Event is one message sent to clients.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Entity    string          `json:"entity,omitempty"`
	ID        int64           `json:"id,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is an inbound subscription change.
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected subscriber.
type Client struct {
	ID     string
	Topics []string
	Send   chan []byte
	conn   Conn
}

// NewClient returns a client with a buffered send queue.
func NewClient(topics []string) *Client {
	return &Client{ID: uuid.NewString(), Topics: topics, Send: make(chan []byte, 64)}
}

// Hub tracks clients and their topic subscriptions. It is safe for
// concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	all     map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and subscribes it to its initial topics.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	h.subscribeLocked(client, client.Topics)
}

// Unregister removes a client and closes its Send channel. Unregistering
// twice is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	h.unsubscribeLocked(client, client.Topics)
	delete(h.all, client)
	close(client.Send)
}

func (h *Hub) subscribeLocked(client *Client, topics []string) {
	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
}

func (h *Hub) unsubscribeLocked(client *Client, topics []string) {
	for _, topic := range topics {
		if subs, ok := h.clients[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.clients, topic)
			}
		}
	}
}

// Subscribe adds topics to a registered client.
func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var added []string
	for _, t := range topics {
		if !contains(client.Topics, t) {
			added = append(added, t)
		}
	}
	h.subscribeLocked(client, added)
	client.Topics = append(client.Topics, added...)
}

// Unsubscribe removes topics from a registered client.
func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unsubscribeLocked(client, topics)
	remaining := client.Topics[:0:0]
	for _, t := range client.Topics {
		if !contains(topics, t) {
			remaining = append(remaining, t)
		}
	}
	client.Topics = remaining
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ProcessMessage applies a subscribe or unsubscribe request.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Topics)
	}
}

// Broadcast sends event to the subscribers of its topic. Slow clients whose
// queue is full miss the event.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", event.Topic).Msg("marshal websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[event.Topic] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn().Str("client", client.ID).Str("topic", event.Topic).Msg("client queue full, event dropped")
		}
	}
}

// PublishJSON broadcasts v as the data of a typed event on topic.
func (h *Hub) PublishJSON(topic, eventType string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Event{Type: eventType, Topic: topic, Timestamp: time.Now().UTC(), Data: data})
	return nil
}

// Notify implements gateway.Notifier: every notice goes to the notices topic.
func (h *Hub) Notify(_ context.Context, n gateway.Notice) {
	h.Broadcast(Event{
		Type:      n.Type,
		Topic:     TopicNotices,
		Entity:    n.Entity,
		ID:        n.ID,
		Message:   n.Message,
		Timestamp: n.At,
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// Handler upgrades HTTP requests to WebSocket connections on the hub.
type Handler struct {
	hub      *Hub
	upgrader gorillawebsocket.Upgrader
	// initial returns events sent to a client right after it connects.
	initial func(topics []string) []Event
}

// NewHandler returns a Handler. allowedOrigins empty or containing "*"
// accepts every origin. initial may be nil.
func NewHandler(hub *Hub, allowedOrigins []string, initial func(topics []string) []Event) *Handler {
	return &Handler{
		hub:     hub,
		initial: initial,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || contains(allowed, origin)
	}
}

func (wsh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", wsh.HandleConnect)
}

// ParseTopics reads the comma separated topics query value, falling back to
// DefaultTopics.
func ParseTopics(raw string) []string {
	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" && !contains(topics, t) {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return append([]string(nil), DefaultTopics...)
	}
	return topics
}

// HandleConnect upgrades the connection, registers the client and starts its
// read and write pumps.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(ParseTopics(c.QueryParam("topics")))
	client.conn = ws
	wsh.hub.Register(client)
	wsh.hub.logger.Debug().Str("client", client.ID).Strs("topics", client.Topics).Msg("websocket client connected")

	if wsh.initial != nil {
		for _, ev := range wsh.initial(client.Topics) {
			if data, err := json.Marshal(ev); err == nil {
				select {
				case client.Send <- data:
				default:
				}
			}
		}
	}

	go wsh.writePump(client, ws)
	go wsh.readPump(client, ws)
	return nil
}

func (wsh *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		wsh.hub.Unregister(client)
		ws.Close()
	}()

	ws.SetReadLimit(maxMessage)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		wsh.hub.ProcessMessage(client, msg)
	}
}

func (wsh *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(gorillawebsocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
