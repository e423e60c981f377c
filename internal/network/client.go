package network

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
	"github.com/squeegeesoft/pressworks/server/internal/platform/optimization"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
	// Floor actions are physical; one per interval keeps spam clients honest.
	actionCooldown = 250 * time.Millisecond
)

// PlayerAction represents an incoming command from the game client.
type PlayerAction struct {
	Type     string          `json:"type"`      // "BURN_SCREEN", "PULL_PRINT", ...
	PlayerID string          `json:"player_id"` // Who triggered the action
	Payload  json.RawMessage `json:"payload"`   // Action-specific data
}

// ActionResult is sent back to the acting client only.
type ActionResult struct {
	Kind   string `json:"kind"` // Always "ACTION_RESULT"
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// Client holds one WebSocket connection and its send queue.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	lastActionTime time.Time

	// The read goroutine queues ACTION_RESULTs while the hub may be
	// evicting the client; the flag keeps both off a closed channel.
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, optimization.DefaultConfig().ClientSendBuffer),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// closeSend shuts the send queue exactly once. Only the hub calls this.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// trySend queues data for the write pump. Returns false when the client
// is already evicted or its queue is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump pumps messages from the websocket connection into the simulation.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Errorf("websocket read: %v", err)
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket: " + err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	// Rate limiting: the floor moves at human speed, not packet speed.
	if time.Since(c.lastActionTime) < actionCooldown {
		c.hub.logger.Warn("Rate limit exceeded for client action from " + action.PlayerID)
		return
	}
	c.lastActionTime = time.Now()

	actor := action.PlayerID
	if actor == "" {
		actor = "PLAYER"
	}

	eng := c.hub.engine
	var err error

	switch action.Type {
	case "ACCEPT_JOB":
		var p struct {
			JobID string `json:"job_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.AcceptJob(p.JobID, actor)
		}

	case "DECLINE_JOB":
		var p struct {
			JobID string `json:"job_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.DeclineJob(p.JobID, actor)
		}

	case "COMPLETE_JOB":
		var p struct {
			JobID string `json:"job_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.CompleteJob(p.JobID, actor)
		}

	case "BURN_SCREEN":
		var p struct {
			JobID      string `json:"job_id"`
			Location   string `json:"location"`
			ColorIndex int    `json:"color_index"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			_, err = eng.BurnScreen(p.JobID, catalog.LocationID(p.Location), p.ColorIndex, actor)
		}

	case "MOUNT_SCREEN":
		var p struct {
			Head     int    `json:"head"`
			ScreenID string `json:"screen_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.MountScreen(p.Head, p.ScreenID, actor)
		}

	case "LOAD_SHIRT":
		var p struct {
			Platen int    `json:"platen"`
			JobID  string `json:"job_id"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.LoadShirt(p.Platen, p.JobID, actor)
		}

	case "ROTATE_HEADS":
		err = eng.RotateHeads(actor)

	case "ROTATE_CAROUSEL":
		err = eng.RotateCarousel(actor)

	case "PULL_PRINT":
		err = eng.PullPrint(actor)

	case "UNLOAD_SHIRT":
		var p struct {
			Platen int `json:"platen"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = eng.UnloadShirt(p.Platen, actor)
		}

	case "HIRE":
		err = eng.HireEmployee(actor)

	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		return
	}

	c.sendResult(action.Type, err)
}

// sendResult reports the command outcome back to this client only.
func (c *Client) sendResult(action string, err error) {
	result := ActionResult{Kind: "ACTION_RESULT", Action: action, OK: err == nil}
	if err != nil {
		result.Error = err.Error()
		c.hub.logger.Warn("Action " + action + " rejected: " + err.Error())
	}
	data, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		return
	}
	if c.trySend(data) {
		metrics.Get().RecordWSMessage(false)
	}
	// Otherwise the client is backed up or evicted; the broadcast
	// stream will catch a surviving client up.
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
