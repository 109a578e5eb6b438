package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"fairbet-backend/internal/lib/logger/sl"
	"fairbet-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler pushes settlement and balance events to connected
// wallets. It implements services.Broadcaster; the engine announces
// settled facts only, never in-flight game state.
type WebSocketHandler struct {
	hub *WebSocketHub
	log *slog.Logger
}

type WebSocketHub struct {
	mu         sync.Mutex
	clients    map[string]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	Address string
	Conn    *websocket.Conn
}

type Message struct {
	Type    string      `json:"type"`
	Address string      `json:"address,omitempty"`
	Data    interface{} `json:"data"`
}

func NewWebSocketHandler(log *slog.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		hub: hub,
		log: log,
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.mu.Lock()
			hub.clients[client.Address] = client.Conn
			hub.mu.Unlock()

		case client := <-hub.unregister:
			hub.mu.Lock()
			if conn, ok := hub.clients[client.Address]; ok && conn == client.Conn {
				delete(hub.clients, client.Address)
			}
			hub.mu.Unlock()

		case msg := <-hub.broadcast:
			hub.mu.Lock()
			conn, ok := hub.clients[msg.Address]
			hub.mu.Unlock()
			if ok {
				conn.WriteJSON(msg)
			}
		}
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	address := c.GetString("user_address")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("failed to upgrade to websocket", sl.Err(err))
		return
	}

	client := &Client{
		Address: address,
		Conn:    conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		// the feed is one-way; reads only detect disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Error("websocket error", sl.Err(err))
			}
			break
		}
	}
}

func (h *WebSocketHandler) BroadcastSettlement(address string, session *models.GameSession) {
	h.hub.broadcast <- &Message{
		Type:    "settlement",
		Address: address,
		Data: gin.H{
			"session_id": session.ID,
			"game_type":  session.GameType,
			"result":     session.Result,
			"win_amount": session.WinAmount,
		},
	}
}

func (h *WebSocketHandler) BroadcastBalance(address string, balance float64) {
	h.hub.broadcast <- &Message{
		Type:    "balance",
		Address: address,
		Data: gin.H{
			"balance": balance,
		},
	}
}
