package web

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"sports-data-service/database"
	"sports-data-service/logger"
)

// WSMessage WebSocket消息结构
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client WebSocket客户端
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub 维护当前连接的客户端集合并负责广播
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *WSMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub 创建新的Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *WSMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 运行Hub事件循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			wsClients.Set(float64(count))
			logger.Printf("Client registered. Total clients: %d", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			wsClients.Set(float64(count))
			logger.Printf("Client unregistered. Total clients: %d", count)

		case message := <-h.broadcast:
			data := h.marshalMessage(message)

			// 在快照上迭代，广播期间的断开不会破坏集合
			h.mu.RLock()
			snapshot := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				snapshot = append(snapshot, client)
			}
			h.mu.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- data:
				default:
					// 发送缓冲已满，剔除该客户端，不影响其余客户端
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
					h.mu.Unlock()
				}
			}
			broadcastsTotal.Inc()
		}
	}
}

// BroadcastMatchCreated 广播比赛创建事件（实现 services.MatchCreatedNotifier）
func (h *Hub) BroadcastMatchCreated(match *database.Match) {
	h.broadcast <- &WSMessage{
		Type: "match_created",
		Data: match,
	}
}

// ClientCount 返回当前客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// marshalMessage 序列化消息
func (h *Hub) marshalMessage(message *WSMessage) []byte {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("Failed to marshal message: %v", err)
		return []byte("{}")
	}
	return data
}

// readPump 读取客户端消息。客户端不会发送有意义的内容，这里只用于感知断开
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump 向客户端写入消息
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
