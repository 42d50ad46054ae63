// Package feed 支付实时推送 WebSocket
//
// 管理端连接 /ws/payments 后，每条新增支付记录都会以
// {type:"payment", data, timestamp} 的形式广播给所有连接。
package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clothing-store/internal/apiserver/auth"
	"clothing-store/internal/shared/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// sendBuffer 每个连接的待发送队列长度，队列满的连接会被断开
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域（开发环境）
	},
}

// Message WebSocket 消息
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConnObserver 连接数观察者（指标）
type ConnObserver interface {
	WSConnectionOpened()
	WSConnectionClosed()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 支付推送中心
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	observer ConnObserver
}

// NewHub 创建推送中心，observer 可为 nil
func NewHub(observer ConnObserver) *Hub {
	return &Hub{clients: make(map[*client]struct{}), observer: observer}
}

// RegisterRoutes 注册 WebSocket 路由（仅管理员）
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/payments", auth.RequireRoles(string(model.UserRoleAdmin))(h.HandleWebSocket))
}

// HandleWebSocket 处理 WebSocket 连接
//
// 路由: GET /ws/payments
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[PaymentFeed] Upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	total := h.addClient(c)
	if user := auth.GetAuthUser(r.Context()); user != nil {
		log.Printf("[PaymentFeed] %s connected, total: %d", user.UserName, total)
	}

	go h.writePump(c)
	go h.readPump(c)
}

// PublishPayment 广播一条支付记录，不阻塞调用方
func (h *Hub) PublishPayment(p *model.Payment) {
	h.broadcast(Message{Type: "payment", Data: p, Timestamp: time.Now().UTC()})
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 断开全部连接
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.removeClient(c)
	}
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[PaymentFeed] Marshal error: %v", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("[PaymentFeed] Dropping slow client")
		h.removeClient(c)
	}
}

func (h *Hub) addClient(c *client) int {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.WSConnectionOpened()
	}
	return n
}

// removeClient 移除连接并关闭发送队列，重复调用安全
func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.WSConnectionClosed()
	}
}

// writePump 发送队列中的消息和心跳，队列关闭后断开连接
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[PaymentFeed] Write error: %v", err)
				h.removeClient(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.removeClient(c)
				return
			}
		}
	}
}

// readPump 读取客户端消息以处理 pong 与关闭帧
func (h *Hub) readPump(c *client) {
	defer func() {
		h.removeClient(c)
		log.Printf("[PaymentFeed] Client disconnected, remaining: %d", h.ClientCount())
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[PaymentFeed] Read error: %v", err)
			}
			return
		}
	}
}
