package pairing

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Типы событий, рассылаемых в комнату турнира.
const (
	EventRoundOpened        = "ROUND_OPENED"
	EventResultRecorded     = "RESULT_RECORDED"
	EventStandingsUpdated   = "STANDINGS_UPDATED"
	EventTournamentFinished = "TOURNAMENT_FINISHED"
)

type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client — одно websocket-подключение, привязанное к комнате турнира.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string

	mu     sync.Mutex
	closed bool
}

func (c *Client) closeSend() {
	c.mu.Lock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
	c.mu.Unlock()
}

func (c *Client) trySend(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- message:
	default:
		// Медленный клиент: сообщение пропускается, соединение не блокируется.
		slog.Warn("dropping websocket message for slow client", "room", c.Room)
	}
}

// Hub держит комнаты по id турнира и раздаёт события всем подписчикам комнаты.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.join(client)
		case client := <-h.Unregister:
			h.leave(client)
		}
	}
}

func (h *Hub) join(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.Room]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[client.Room] = room
	}
	room[client] = struct{}{}
	slog.Info("websocket client joined", "room", client.Room, "clients", len(room))
}

func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.Room]
	if !ok {
		return
	}
	if _, member := room[client]; !member {
		return
	}
	client.closeSend()
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.Room)
		slog.Info("websocket room closed", "room", client.Room)
		return
	}
	slog.Info("websocket client left", "room", client.Room, "clients", len(room))
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		slog.Error("failed to marshal websocket message", "room", roomID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		client.trySend(payload)
	}
}

// ReadPump читает соединение только ради pong-ов и закрытия: поток
// событий односторонний, входящие сообщения игнорируются.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "room", c.Room, "error", err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
