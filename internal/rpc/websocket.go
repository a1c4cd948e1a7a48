package rpc

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atomic-swap-net/swapcoordd/internal/coordinator"
	"github.com/atomic-swap-net/swapcoordd/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSEventType names a swap lifecycle transition carried over the feed.
type WSEventType string

const (
	WSEventSwapRegistered   WSEventType = "swap_registered"
	WSEventSwapInitiated    WSEventType = "swap_initiated"
	WSEventSwapParticipated WSEventType = "swap_participated"
	WSEventSwapRedeemed     WSEventType = "swap_redeemed"
	WSEventSwapCompleted    WSEventType = "swap_completed"
)

// WSEvent is the message shape broadcast to subscribed clients.
type WSEvent struct {
	Type      WSEventType `json:"type"`
	SwapKey   string      `json:"swapKey"`
	Timestamp int64       `json:"timestamp"`
}

// WSSubscription lets a client narrow the events it receives.
type WSSubscription struct {
	Action string   `json:"action"`
	Events []string `json:"events"`
}

// WSClient is one connected feed subscriber.
type WSClient struct {
	conn          *websocket.Conn
	send          chan []byte
	subscriptions map[WSEventType]bool
	mu            sync.RWMutex
	hub           *WSHub
}

// WSHub fans out swap events to every subscribed client. It is the
// optional, additive feed alongside the request/response endpoints; no
// client state is ever read back from it.
type WSHub struct {
	clients    map[*WSClient]bool
	broadcast  chan *WSEvent
	register   chan *WSClient
	unregister chan *WSClient
	log        *logging.Logger
	mu         sync.RWMutex
}

func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan *WSEvent, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		log:        logging.GetDefault().Component("ws"),
	}
}

// Run drives the hub's event loop. It must run in its own goroutine for
// the lifetime of the server.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("feed client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Debug("feed client disconnected", "clients", len(h.clients))

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.log.Error("failed to marshal swap event", "error", err)
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				client.mu.RLock()
				subscribed := client.subscriptions[event.Type] || len(client.subscriptions) == 0
				client.mu.RUnlock()

				if !subscribed {
					continue
				}

				select {
				case client.send <- data:
				default:
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast enqueues an event for delivery to subscribed clients. It never
// blocks; a full channel drops the event rather than stalling the caller.
func (h *WSHub) Broadcast(eventType WSEventType, swapKey string, timestamp int64) {
	event := &WSEvent{Type: eventType, SwapKey: swapKey, Timestamp: timestamp}
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("broadcast channel full, dropping event", "type", eventType)
	}
}

// broadcastSwapEvent adapts a coordinator.SwapEvent onto the feed. It is
// registered as the coordinator's event handler in NewServer.
func (s *Server) broadcastSwapEvent(ev coordinator.SwapEvent) {
	wsType, ok := swapEventTypes[ev.Status.String()]
	if !ok {
		return
	}
	s.wsHub.Broadcast(wsType, hex.EncodeToString(ev.SwapKey[:]), ev.Timestamp.Unix())
}

var swapEventTypes = map[string]WSEventType{
	"REGISTERED":   WSEventSwapRegistered,
	"INITIATED":    WSEventSwapInitiated,
	"PARTICIPATED": WSEventSwapParticipated,
	"REDEEMED":     WSEventSwapRedeemed,
	"COMPLETED":    WSEventSwapCompleted,
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("feed upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		conn:          conn,
		send:          make(chan []byte, 256),
		subscriptions: make(map[WSEventType]bool),
		hub:           s.wsHub,
	}

	s.wsHub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("feed read error", "error", err)
			}
			break
		}

		var sub WSSubscription
		if err := json.Unmarshal(message, &sub); err == nil {
			c.handleSubscription(&sub)
		}
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleSubscription(sub *WSSubscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, eventStr := range sub.Events {
		eventType := WSEventType(eventStr)
		switch sub.Action {
		case "subscribe":
			c.subscriptions[eventType] = true
		case "unsubscribe":
			delete(c.subscriptions, eventType)
		}
	}
}
