package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/engine"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
	"github.com/squeegeesoft/pressworks/server/internal/platform/optimization"
)

// Hub maintains the set of active clients and broadcasts shop events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	engine     *engine.Engine
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub.
func NewHub(eng *engine.Engine, log *logger.Logger) *Hub {
	tuning := optimization.DefaultConfig()
	return &Hub{
		broadcast:  make(chan []byte, tuning.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		engine:     eng,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.trySend(message) {
					metrics.Get().RecordWSMessage(false)
				} else {
					client.closeSend()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a ShopEvent to JSON and sends it to all clients.
func (h *Hub) BroadcastEvent(event events.ShopEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("Failed to serialize ShopEvent for WebSocket broadcast: %v", err)
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine that polls the EventLog and pushes new
// events to the Hub. The Hub runs independently from the Engine's dispatch
// loop while picking up the same events.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessedEvent := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				allEvents := eventLog.Replay()
				newEventsCount := len(allEvents) - lastProcessedEvent

				if newEventsCount > 0 {
					newEvents := allEvents[lastProcessedEvent:]
					for _, event := range newEvents {
						h.BroadcastEvent(event)
					}
					lastProcessedEvent = len(allEvents)
				}
			}
		}
	}()
}
