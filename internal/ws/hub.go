package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/voltmesh/gridadmin/internal/auth"
	"github.com/voltmesh/gridadmin/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	EventUserOnline      = "user_online"
	EventUserOffline     = "user_offline"
	EventNotification    = "notification"
	EventTicketUpdated   = "ticket_updated"
	EventTicketEscalated = "ticket_escalated"
	EventMeterReading    = "meter_reading"
	EventAnnouncement    = "announcement"
	EventDailyStats      = "daily_stats"
	EventRoomJoined      = "room_joined"
	EventRoomLeft        = "room_left"
)

const AdminRoom = "role_admin"

// UserRoom names the per-user room every authenticated connection joins.
func UserRoom(userID string) string { return "user_" + userID }

// RoleRoom names the shared room for a role.
func RoleRoom(role string) string { return "role_" + strings.ToLower(role) }

// DTRRoom names the room for a distribution transformer's live events.
func DTRRoom(name string) string { return "dtr_" + name }

// Message is the wire format pushed to clients.
type Message struct {
	Event     string      `json:"event"`
	Room      string      `json:"room,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// roomRequest is what clients send to join or leave a resource room.
type roomRequest struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// Hub maintains the set of active clients and room membership. Delivery is
// fire-and-forget: only currently connected sockets receive a message, and a
// slow client is dropped rather than blocking the hub.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	log      *zap.Logger
	metrics  *metrics.Metrics
	verifier *auth.Verifier
}

// Client is one websocket connection. The send channel is never closed;
// shutdown is signalled through done so a broadcast racing a disconnect can
// never panic on a closed channel.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	user   *auth.UserContext
	closed sync.Once
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewHub(log *zap.Logger, m *metrics.Metrics, verifier *auth.Verifier) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
		log:      log.Named("ws.hub"),
		metrics:  m,
		verifier: verifier,
	}
}

// ServeWS authenticates the handshake and registers the connection. The token
// is taken from the Authorization header or, failing that, the token query
// parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	user, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
		user: user,
	}
	h.register(client)

	go client.writePump()
	go client.readPump()
}

func bearerToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.joinLocked(client, UserRoom(client.user.UserID))
	for _, role := range client.user.Roles {
		h.joinLocked(client, RoleRoom(role))
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetWSConnections(count)
	h.log.Info("client connected",
		zap.String("user_id", client.user.UserID),
		zap.Int("client_count", count),
	)
	h.BroadcastRoom(AdminRoom, EventUserOnline, map[string]interface{}{"userId": client.user.UserID})
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client]
	if known {
		delete(h.clients, client)
		for room, members := range h.rooms {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		client.shutdown()
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !known {
		return
	}
	h.metrics.SetWSConnections(count)
	h.log.Info("client disconnected",
		zap.String("user_id", client.user.UserID),
		zap.Int("client_count", count),
	)
	h.BroadcastRoom(AdminRoom, EventUserOffline, map[string]interface{}{"userId": client.user.UserID})
}

func (h *Hub) joinLocked(client *Client, room string) {
	members := h.rooms[room]
	if members == nil {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
}

// JoinRoom adds a connection to a named room.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	h.joinLocked(client, room)
	h.mu.Unlock()
}

// LeaveRoom removes a connection from a named room.
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	if members := h.rooms[room]; members != nil {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
}

// ConnectedCount returns the number of live connections.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of connections currently in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastAll sends an event to every connected client.
func (h *Hub) BroadcastAll(event string, data interface{}) {
	payload, err := h.marshal(Message{Event: event, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, payload)
	}
}

// BroadcastRoom sends an event to every member of one room. Messages to an
// empty room are silently discarded.
func (h *Hub) BroadcastRoom(room, event string, data interface{}) {
	payload, err := h.marshal(Message{Event: event, Room: room, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}

	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]*Client, 0, len(members))
	for client := range members {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, payload)
	}
}

// BroadcastRooms sends one event to a list of rooms.
func (h *Hub) BroadcastRooms(rooms []string, event string, data interface{}) {
	for _, room := range rooms {
		h.BroadcastRoom(room, event, data)
	}
}

func (h *Hub) marshal(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal broadcast message", zap.Error(err))
		return nil, err
	}
	return payload, nil
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case <-client.done:
		return
	default:
	}
	select {
	case client.send <- payload:
	case <-client.done:
	default:
		// Slow consumer: drop the connection rather than block the hub.
		h.metrics.IncWSDropped()
		go h.unregister(client)
	}
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

func (c *Client) shutdown() {
	c.closed.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req roomRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		c.handleRoomRequest(req)
	}
}

// handleRoomRequest lets clients follow resource rooms. Only DTR rooms can be
// joined on request; user and role membership is fixed at handshake.
func (c *Client) handleRoomRequest(req roomRequest) {
	room := strings.TrimSpace(req.Room)
	if !strings.HasPrefix(room, "dtr_") {
		return
	}
	switch req.Action {
	case "join":
		c.hub.JoinRoom(c, room)
		c.confirm(EventRoomJoined, room)
	case "leave":
		c.hub.LeaveRoom(c, room)
		c.confirm(EventRoomLeft, room)
	}
}

func (c *Client) confirm(event, room string) {
	payload, err := json.Marshal(Message{Event: event, Room: room, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
