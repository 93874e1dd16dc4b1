package events

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mediajobs/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebsocketHandler streams hub events to websocket clients as JSON.
type WebsocketHandler struct {
	hub      *Hub
	token    string
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebsocketHandler builds the /api/events endpoint. When token is set,
// clients authenticate with a bearer header or a ?token= query parameter,
// since browser websocket clients cannot set headers.
func NewWebsocketHandler(hub *Hub, token string, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub:    hub,
		token:  strings.TrimSpace(token),
		logger: logging.NewComponentLogger(logger, "events"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Authorized reports whether r carries the configured token.
func (h *WebsocketHandler) Authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	candidate := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		candidate = strings.TrimPrefix(auth, "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(h.token)) == 1
}

func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Authorized(r) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	sub := h.hub.Subscribe(DefaultBuffer)
	h.logger.Debug("websocket client connected", logging.String("remote", r.RemoteAddr))

	go h.writePump(conn, sub)
	h.readPump(conn)
	sub.Release(h.logger, "websocket")
}

// readPump consumes control frames until the client goes away.
func (h *WebsocketHandler) readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebsocketHandler) writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case evt, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
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
