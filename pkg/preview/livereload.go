package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Event is a message sent on the reload socket.
type Event struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

const (
	EventConnected = "connected"
	EventReload    = "reload"
)

type reloadClient struct {
	send chan Event
}

// reloadHub fans reload events out to connected browsers.
type reloadHub struct {
	logger   *zap.Logger
	metrics  *metrics
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*reloadClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func newReloadHub(logger *zap.Logger, m *metrics) *reloadHub {
	return &reloadHub{
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*reloadClient]struct{}),
	}
}

func (h *reloadHub) add(c *reloadClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.wg.Add(1)
	h.metrics.clients.Inc()
	return true
}

func (h *reloadHub) remove(c *reloadClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.metrics.clients.Dec()
	}
}

func (h *reloadHub) greet(c *reloadClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case c.send <- Event{Type: EventConnected}:
	default:
	}
}

// broadcast queues event for every client. Slow clients already holding a
// pending event are skipped; one reload is as good as two.
func (h *reloadHub) broadcast(event Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	sent := 0
	for c := range h.clients {
		select {
		case c.send <- event:
			sent++
		default:
		}
	}
	return sent
}

func (h *reloadHub) serveHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("livereload upgrade failed", zap.Error(err))
		return
	}

	client := &reloadClient{send: make(chan Event, 1)}
	if !h.add(client) {
		_ = conn.Close()
		return
	}
	defer h.wg.Done()
	defer h.remove(client)

	h.logger.Debug("livereload client connected", zap.String("remote", r.RemoteAddr))
	h.greet(client)

	// The browser never writes; reading only surfaces the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	h.pump(conn, client, done)
	_ = conn.Close()
	<-done
	h.logger.Debug("livereload client disconnected", zap.String("remote", r.RemoteAddr))
}

func (h *reloadHub) pump(conn *websocket.Conn, client *reloadClient, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("livereload encode failed", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// close disconnects every client and waits for their handlers to return.
func (h *reloadHub) close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		for c := range h.clients {
			close(c.send)
		}
	}
	h.mu.Unlock()
	h.wg.Wait()
}
