package admin

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	liveBuffer   = 256
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = pongTimeout * 9 / 10
)

// handleLive handles GET /messages/live. Each newly captured message is
// sent as one JSON text frame. Clients that fall behind miss messages.
func (a *API) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		a.log.Debug("live upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sub, unsubscribe := a.store.Subscribe(liveBuffer)
	defer unsubscribe()

	a.log.Debug("live subscriber connected", "remote", r.RemoteAddr)
	defer a.log.Debug("live subscriber disconnected", "remote", r.RemoteAddr)

	// The read loop only handles control frames and notices the close.
	closed := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-sub:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				a.log.Debug("live write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
