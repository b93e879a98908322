package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/greenmangroup/wheelhouse/internal/events"
)

const (
	// wsWriteWait bounds a single frame write to a client.
	wsWriteWait = 5 * time.Second

	// wsSendBuffer is the per-client outbound queue. A client that falls
	// this far behind is disconnected rather than blocking the bus.
	wsSendBuffer = 64
)

// Hub fans bus events out to connected websocket clients. Event handlers
// run on the emitter's goroutine, so broadcast never blocks: it enqueues
// onto per-client buffered channels and drops clients that stall.
type Hub struct {
	log zerolog.Logger
	bus *events.Bus

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a websocket hub over the given bus.
func NewHub(bus *events.Bus, log zerolog.Logger) *Hub {
	return &Hub{
		log:     log.With().Str("component", "ws_hub").Logger(),
		bus:     bus,
		clients: make(map[*wsClient]struct{}),
	}
}

// Start subscribes the hub to every event type. Call once before serving.
func (h *Hub) Start() {
	for _, eventType := range events.AllTypes() {
		h.bus.Subscribe(eventType, h.broadcast)
	}
}

// Close disconnects every client. New connections are rejected afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
	}
}

// HandleWS handles GET /ws. Upgrades the connection and streams event
// envelopes until the client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Info().Int("clients", total).Msg("Websocket client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader discards inbound frames; its only job is noticing the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.remove(client)
		conn.Close(websocket.StatusNormalClosure, "")
		h.log.Info().Msg("Websocket client disconnected")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-client.send:
			if !ok {
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, wsWriteWait)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			writeCancel()
			if err != nil {
				return
			}
		}
	}
}

// broadcast enqueues an event envelope for every connected client.
func (h *Hub) broadcast(event *events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// Stalled client: drop it instead of blocking the emitter.
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}
