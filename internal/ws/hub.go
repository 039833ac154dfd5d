package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-bom-graph/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

const broadcastBuffer = 256

// Event is the change-feed payload sent to every connected client after a
// mutation commits.
type Event struct {
	Type     string         `json:"type"`
	Action   string         `json:"action"`
	PartID   string         `json:"partId,omitempty"`
	ParentID string         `json:"parentId,omitempty"`
	ChildID  string         `json:"childId,omitempty"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}

const (
	EventPartChanged = "part_changed"
	EventBomChanged  = "bom_changed"
)

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		log:        log,
	}
}

// Publish encodes event and queues it for broadcast. When the queue is full
// the event is dropped rather than blocking the caller.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "encoding ws event", err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn(context.Background(), "ws broadcast queue full, dropping event")
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Run services registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug(ctx, "ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
