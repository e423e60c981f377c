// Package events provides the event-sourcing backbone of the shop simulation:
// an immutable, append-only log of everything that happened on the floor.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a shop event.
type EventType string

const (
	EventTypeTimeTick         EventType = "TIME_TICK"
	EventTypeDayEnded         EventType = "DAY_ENDED"
	EventTypeDayStarted       EventType = "DAY_STARTED"
	EventTypeTimeScaleChanged EventType = "TIME_SCALE_CHANGED"

	EventTypeJobOffered   EventType = "JOB_OFFERED"
	EventTypeJobAccepted  EventType = "JOB_ACCEPTED"
	EventTypeJobDeclined  EventType = "JOB_DECLINED"
	EventTypeJobCompleted EventType = "JOB_COMPLETED"
	EventTypeJobOverdue   EventType = "JOB_OVERDUE"

	EventTypeScreenBurned    EventType = "SCREEN_BURNED"
	EventTypeScreenReclaimed EventType = "SCREEN_RECLAIMED"

	EventTypeScreenMounted   EventType = "SCREEN_MOUNTED"
	EventTypeShirtLoaded     EventType = "SHIRT_LOADED"
	EventTypeCarouselRotated EventType = "CAROUSEL_ROTATED"
	EventTypePrintPulled     EventType = "PRINT_PULLED"
	EventTypeShirtUnloaded   EventType = "SHIRT_UNLOADED"

	EventTypeLedgerDeposit  EventType = "LEDGER_DEPOSIT"
	EventTypeLedgerWithdraw EventType = "LEDGER_WITHDRAW"
	EventTypeBankruptcy     EventType = "BANKRUPTCY"
	EventTypeEmployeeHired  EventType = "EMPLOYEE_HIRED"
)

// ShopEvent represents an immutable record of an action in the simulation.
type ShopEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // Who performed the action ("SYSTEM_CLOCK", a player id...)
	TargetID  string      `json:"target_id"` // Affected entity (job id, screen id, press station)
	Payload   interface{} `json:"payload"`   // Event-specific data
	GameDay   int         `json:"game_day"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event ShopEvent) error
}

// EventLog is the in-memory append-only log, optionally write-through to
// persistent storage.
type EventLog struct {
	mu        sync.RWMutex
	events    []ShopEvent
	persister EventPersister
}

// NewEventLog creates a new event log. A nil persister keeps it memory-only
// (tests, tooling).
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]ShopEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event ShopEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through to persistent storage off the hot path.
		go func(e ShopEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByType returns all events of a given type, oldest first.
func (el *EventLog) GetByType(t EventType) []ShopEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []ShopEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetByDay returns all events that occurred on a specific game day.
func (el *EventLog) GetByDay(day int) []ShopEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []ShopEvent
	for _, e := range el.events {
		if e.GameDay == day {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events for state reconstruction.
func (el *EventLog) Replay() []ShopEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// Len returns the current number of events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
