package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/inactivist/aqimon/pkg/model"
)

const (
	// writeWait bounds how long a single frame write may take.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the
	// connection. Pings go out at pingPeriod to stay ahead of it.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API serves local dashboards, so any origin may subscribe.
	CheckOrigin: func(*http.Request) bool { return true },
}

// hub fans freshly stored readings out to connected websocket clients.
type hub struct {
	mu   sync.Mutex
	subs map[chan model.Reading]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan model.Reading]struct{})}
}

func (h *hub) add() chan model.Reading {
	ch := make(chan model.Reading, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) remove(ch chan model.Reading) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// broadcast delivers r to every subscriber, dropping it for clients
// whose send buffer is full.
func (h *hub) broadcast(r model.Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- r:
		default:
		}
	}
}

// handleLive upgrades the connection and streams each new reading as
// one JSON message.
func (s *Server) handleLive(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.hub.add()
	defer s.hub.remove(ch)

	done := startReader(conn)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case r := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(r); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// startReader drains inbound frames so pong handling runs, closing
// done when the peer goes away.
func startReader(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}
