package ws

import (
	"encoding/json"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	TestID  string          `json:"testId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans test events out to the connections following each test
type Hub struct {
	// testID -> connections
	conns map[string]map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage

	done     chan struct{}
	stopOnce sync.Once
	log      hclog.Logger
}

// Connection is one subscriber to a test
type Connection struct {
	TestID string
	Send   chan []byte
}

// broadcastMessage is either a message for a test or, with closeTest set,
// a request to drop every connection of that test after earlier messages
type broadcastMessage struct {
	testID    string
	data      []byte
	closeTest bool
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(log hclog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
		done:       make(chan struct{}),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.TestID] == nil {
				h.conns[conn.TestID] = make(map[*Connection]struct{})
			}
			h.conns[conn.TestID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("subscriber connected", "test", conn.TestID)

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			if msg.closeTest {
				for conn := range h.conns[msg.testID] {
					h.remove(conn)
				}
			} else {
				for conn := range h.conns[msg.testID] {
					select {
					case conn.Send <- msg.data:
					default:
						// slow subscriber, drop the message
						h.log.Warn("dropping event for slow subscriber", "test", msg.testID)
					}
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, set := range h.conns {
				for conn := range set {
					h.remove(conn)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(conn *Connection) {
	set, ok := h.conns[conn.TestID]
	if !ok {
		return
	}
	if _, ok := set[conn]; !ok {
		return
	}
	delete(set, conn)
	close(conn.Send)
	if len(set) == 0 {
		delete(h.conns, conn.TestID)
	}
	h.log.Debug("subscriber disconnected", "test", conn.TestID)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection. Safe to call after the hub dropped it.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Subscribers returns how many connections follow testID
func (h *Hub) Subscribers(testID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[testID])
}

// Publish sends an event to every subscriber of testID (implements service.Broadcaster)
func (h *Hub) Publish(testID string, msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode event", "type", msgType, "error", err)
		return
	}
	data, _ := json.Marshal(&Message{Type: msgType, TestID: testID, Payload: raw})
	h.enqueue(&broadcastMessage{testID: testID, data: data})
}

// CloseTest disconnects every subscriber of testID once queued events are
// delivered (implements service.Broadcaster)
func (h *Hub) CloseTest(testID string) {
	h.enqueue(&broadcastMessage{testID: testID, closeTest: true})
}

func (h *Hub) enqueue(msg *broadcastMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Stop disconnects everyone and ends the hub loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
