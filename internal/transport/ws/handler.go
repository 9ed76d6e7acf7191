package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// TestStatus reports whether a test is active
type TestStatus interface {
	Status(ctx context.Context, id string) (bool, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	tests    TestStatus
	upgrader websocket.Upgrader
	log      hclog.Logger
}

// NewHandler creates a new WebSocket handler. allowedOrigins is the
// CORS origin setting; "*" accepts any origin.
func NewHandler(hub *Hub, tests TestStatus, allowedOrigins string, log hclog.Logger) *Handler {
	return &Handler{
		hub:   hub,
		tests: tests,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigins == "*" || origin == "" || origin == allowedOrigins
			},
		},
		log: log,
	}
}

// TestWS handles GET /ws/test/{id}
func (h *Handler) TestWS(w http.ResponseWriter, r *http.Request) {
	testID := mux.Vars(r)["id"]

	active, err := h.tests.Status(r.Context(), testID)
	if err != nil {
		h.log.Error("failed to check test status", "test", testID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !active {
		http.Error(w, "test not found or inactive", http.StatusNotFound)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := &Connection{
		TestID: testID,
		Send:   make(chan []byte, 64),
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// readPump only drains control frames; clients never send events
func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "test", conn.TestID, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
