// Package ws streams preview frames and health to browser clients.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub broadcasts reconstructed panel frames over websockets and serves a
// small health endpoint. It implements led.FramePublisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	frameID   uint64
	startTime time.Time

	// Underruns reports the driver's counter for /health; optional.
	Underruns func() uint64
}

func NewHub() *Hub {
	return &Hub{
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
	}
}

// PublishFrame broadcasts one RGB frame to all connected clients.
func (h *Hub) PublishFrame(w, hgt int, rgb []byte) {
	h.mu.Lock()
	h.frameID++
	id := h.frameID
	h.mu.Unlock()

	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		W       int    `json:"w"`
		H       int    `json:"h"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, W: w, H: hgt, RGB: rgb})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// HandleFrames upgrades a client and keeps it subscribed until it drops.
func (h *Hub) HandleFrames(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports liveness counters as JSON.
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	up := time.Since(h.startTime).Seconds()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": up,
	}
	if up > 0 {
		resp["fps"] = float64(h.frameID) / up
	}
	h.mu.RUnlock()
	if h.Underruns != nil {
		resp["underruns"] = h.Underruns()
	}
	_ = json.NewEncoder(w).Encode(resp)
}
