package network

import (
	"context"
	"testing"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

func newTestHub() *Hub {
	return NewHub(nil, logger.NewLogger())
}

func isClosed(c *Client) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestActionResultAfterEviction(t *testing.T) {
	// Setup: a client the hub has already evicted
	hub := newTestHub()
	client := NewClient(hub, nil)
	client.closeSend()

	// Act: the read goroutine reports a result for an in-flight action.
	// Must not panic on the closed queue.
	client.sendResult("ROTATE_HEADS", nil)

	// Assert
	if client.trySend([]byte("x")) {
		t.Errorf("Expected trySend to refuse an evicted client")
	}
}

func TestCloseSendIsIdempotent(t *testing.T) {
	// Setup
	hub := newTestHub()
	client := NewClient(hub, nil)

	// Act: unregister and broadcast eviction can both reach the close
	client.closeSend()
	client.closeSend()

	// Assert
	if !isClosed(client) {
		t.Errorf("Expected client marked closed")
	}
}

func TestBackedUpClientEvictedFromBroadcast(t *testing.T) {
	// Setup: a registered client whose send queue is full
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient(hub, nil)
	hub.register <- client
	for client.trySend([]byte("backlog")) {
	}

	// Act
	hub.broadcast <- []byte("update")

	// Assert: the hub drops the client instead of blocking or panicking
	deadline := time.After(2 * time.Second)
	for !isClosed(client) {
		select {
		case <-deadline:
			t.Fatalf("Expected backed-up client to be evicted")
		case <-time.After(10 * time.Millisecond):
		}
	}
	client.sendResult("PULL_PRINT", nil)

	hub.mu.Lock()
	_, stillThere := hub.clients[client]
	hub.mu.Unlock()
	if stillThere {
		t.Errorf("Expected evicted client removed from the hub")
	}
}
