package handlers

import (
	"net/http"
	"slices"
	"time"

	"pomodoro/internal/services/hub"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxClientMessage = 4096
	pingInterval     = 20 * time.Second
	pongWait         = 2 * pingInterval
)

func (h *handlers) upgrader() *websocket.Upgrader {
	allowed := h.configs.Peek().CORS.AllowedOrigins

	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			return slices.Contains(allowed, origin) || slices.Contains(allowed, "*")
		},
	}
}

// HandleWebsocket streams the authenticated user's task and pomodoro events.
// The client only needs to keep the connection open; anything it sends is
// read and discarded.
func (h *handlers) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	err = conn.WriteJSON(hub.Event{Type: "connected", Payload: map[string]string{"userId": userID}, At: time.Now().UTC()})
	if err != nil {
		conn.Close()
		return
	}

	client := h.hubService.Add(userID, conn)
	defer h.hubService.Remove(client)

	go keepAlive(conn, client.Done())

	conn.SetReadLimit(maxClientMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
	}
}

// keepAlive pings until done is closed. WriteControl may run alongside the
// hub's writer goroutine.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
