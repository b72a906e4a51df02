package alert

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans alert events out to WebSocket subscribers. Slow subscribers drop
// events rather than hold up the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*subscriber]struct{}),
		logger:  logger.With("component", "alert_hub"),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/violations", h.HandleWebSocket)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(data)
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (h *Hub) add(c *subscriber) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *subscriber) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// @Summary      Violation feed
// @Description  WebSocket stream of plates read alongside helmet violations
// @Tags         alerts
// @Success      101  "Switching Protocols"
// @Router       /ws/violations [get]
func (h *Hub) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	sub := newSubscriber(ws, h.logger)
	h.add(sub)
	h.logger.Info("subscriber connected", "remote", c.RealIP())

	go sub.writePump()
	sub.readPump()

	h.remove(sub)
	h.logger.Info("subscriber disconnected", "remote", c.RealIP())
	return nil
}

type subscriber struct {
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newSubscriber(ws *websocket.Conn, logger *slog.Logger) *subscriber {
	return &subscriber{
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (s *subscriber) enqueue(data []byte) {
	select {
	case <-s.done:
	case s.send <- data:
	default:
		s.logger.Warn("send buffer full, dropping event")
	}
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.ws.Close()
	})
}

// readPump only services control frames; subscribers have nothing to say.
func (s *subscriber) readPump() {
	defer s.close()

	s.ws.SetReadLimit(maxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Error("websocket write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
