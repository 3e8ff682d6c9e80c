// Package server exposes the engine's telemetry as a websocket feed for
// debug overlays. It carries stats snapshots only; terrain data never
// crosses this boundary.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/terrastream/internal/engine/streaming"
)

// Per-client send policy: at most snapshotsPerSec messages sustained, with a
// small burst. Slow consumers drop snapshots instead of backing up the
// publisher.
const (
	snapshotsPerSec = 10
	snapshotBurst   = 20
	sendBuffer      = 8
)

// Hub accepts websocket clients on /ws and fans out stats snapshots pushed by
// the engine's update loop. The hub only ever sees value copies, so it never
// touches orchestrator-owned state.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	srv *http.Server
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// NewHub returns an idle hub; call Start to begin listening.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			// Overlay pages are served from anywhere during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start begins serving the feed on addr. Listening happens on a background
// goroutine; a failed listen is logged, not fatal to the engine.
func (h *Hub) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)

	h.srv = &http.Server{Addr: addr, Handler: mux}
	go func() {
		h.log.Info("stats feed listening", zap.String("addr", addr))
		if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.log.Error("stats feed stopped", zap.Error(err))
		}
	}()
}

// Publish fans a snapshot out to every connected client. Clients whose send
// buffers are full or whose rate budget is spent miss this snapshot.
func (h *Hub) Publish(stats streaming.Stats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		h.log.Error("encoding stats snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Close stops the listener and disconnects every client.
func (h *Hub) Close() error {
	var err error
	if h.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err = h.srv.Shutdown(ctx)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
	}
	h.clients = make(map[*client]struct{})
	return err
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(snapshotsPerSec), snapshotBurst),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("overlay client connected", zap.String("remote", conn.RemoteAddr().String()), zap.Int("clients", n))

	go h.writePump(c)
	go h.readPump(c)
}

// writePump drains the client's queue, skipping snapshots beyond the rate
// budget.
func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		if !c.limiter.Allow() {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
}

// readPump discards inbound frames and unregisters the client on error, which
// is how websocket disconnects surface.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, live := h.clients[c]
	if live {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if live {
		_ = c.conn.Close()
		h.log.Info("overlay client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
	}
}
