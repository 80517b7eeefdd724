package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Client is one websocket connection subscribed to a client ID
type Client struct {
	ClientID string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
}

// Hub tracks websocket connections by client ID and fans messages out to them
type Hub struct {
	clients       map[*Client]bool
	clientsByID   map[string][]*Client
	register      chan *Client
	unregister    chan *Client
	done          chan struct{}
	stopOnce      sync.Once
	upgrader      websocket.Upgrader
	allowedOrigin map[string]bool
	logger        *logrus.Logger
	mutex         sync.RWMutex
}

// NewHub creates a hub. An empty origin list accepts any origin.
func NewHub(allowedOrigins []string, logger *logrus.Logger) *Hub {
	h := &Hub{
		clients:       make(map[*Client]bool),
		clientsByID:   make(map[string][]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		allowedOrigin: make(map[string]bool, len(allowedOrigins)),
		logger:        logger,
	}
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			h.allowedOrigin[origin] = true
		}
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigin) == 0 {
		return true
	}
	return h.allowedOrigin[origin]
}

// Run handles client registration until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.clientsByID[client.ClientID] = append(h.clientsByID[client.ClientID], client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"client_id":     client.ClientID,
				"total_clients": total,
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.removeLocked(client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"client_id":     client.ClientID,
				"total_clients": total,
			}).Info("WebSocket client disconnected")

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop closes every connection and ends Run
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) registerClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// removeLocked drops a client; the caller holds the write lock
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	peers := h.clientsByID[client.ClientID]
	for i, c := range peers {
		if c == client {
			h.clientsByID[client.ClientID] = append(peers[:i], peers[i+1:]...)
			break
		}
	}
	if len(h.clientsByID[client.ClientID]) == 0 {
		delete(h.clientsByID, client.ClientID)
	}
}

// HandleWebSocket upgrades the request and subscribes it to :client_id
func (h *Hub) HandleWebSocket(c *gin.Context) {
	clientID := strings.TrimSpace(c.Param("client_id"))
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		ClientID: clientID,
		Conn:     conn,
		Send:     make(chan []byte, sendBufferSize),
		Hub:      h,
	}

	if !h.registerClient(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// SendToClient sends a message to every connection of a client ID. Slow
// connections are dropped rather than blocking the sender.
func (h *Hub) SendToClient(clientID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	var slow []*Client
	h.mutex.RLock()
	for _, client := range h.clientsByID[clientID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		h.logger.WithField("client_id", clientID).Warn("Dropping slow WebSocket client")
		h.unregisterClient(client)
	}
}

// GetConnectedClients returns the client IDs with at least one connection
func (h *Hub) GetConnectedClients() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	ids := make([]string, 0, len(h.clientsByID))
	for id := range h.clientsByID {
		ids = append(ids, id)
	}
	return ids
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump drains the connection so control frames are processed
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregisterClient(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the connection
func (c *Client) writePump() {
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
				c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
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
