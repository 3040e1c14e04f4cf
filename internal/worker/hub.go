package worker

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHub manages WebSocket clients and broadcasts compute completion
// events to them.
type EventHub struct {
	clients    map[*hubClient]bool
	broadcast  chan models.ComputeEvent
	register   chan *hubClient
	unregister chan *hubClient
	done       chan struct{}
	mu         sync.RWMutex
	logger     *common.Logger
}

// hubClient is one connected WebSocket subscriber.
type hubClient struct {
	hub  *EventHub
	conn *websocket.Conn
	send chan []byte
}

// NewEventHub creates a hub. Call Run on a goroutine before broadcasting.
func NewEventHub(logger *common.Logger) *EventHub {
	return &EventHub{
		clients:    make(map[*hubClient]bool),
		broadcast:  make(chan models.ComputeEvent, 256),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run drives the hub's event loop until Stop.
func (h *EventHub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug().Int("clients", h.ClientCount()).Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug().Int("clients", h.ClientCount()).Msg("WebSocket client disconnected")

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn().Err(err).Msg("Failed to marshal compute event")
				continue
			}

			h.mu.RLock()
			var slow []*hubClient
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// Slow clients are dropped rather than allowed to stall the loop.
			if len(slow) > 0 {
				h.mu.Lock()
				for _, c := range slow {
					delete(h.clients, c)
					close(c.send)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Stop signals the event loop to exit.
func (h *EventHub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Broadcast queues an event for delivery to all connected clients. Events
// are dropped when the queue is full.
func (h *EventHub) Broadcast(event models.ComputeEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Msg("Event broadcast channel full, dropping event")
	}
}

// ServeWS upgrades the connection and registers the client with the hub.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &hubClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *hubClient) writePump() {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// readPump drains the connection, mainly to detect close.
func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
