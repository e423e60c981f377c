// Package engine contains the simulation loop and shop logic.
// This is the heartbeat of PressWorks.
//
// ARCHITECTURAL RULE: the Ticker does NOT mutate shop state directly.
// It emits time events to the EventLog. Subsystems subscribe and react.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
)

// TimeTickPayload is the data attached to each TIME_TICK event.
type TimeTickPayload struct {
	Day         int     `json:"day"`
	Elapsed     float64 `json:"elapsed"`      // Simulated seconds into the work day
	Remaining   float64 `json:"remaining"`    // Until closing time
	Scale       float64 `json:"scale"`        // Simulated seconds per real second
	TickNumber  int64   `json:"tick_number"`
	ClosingSoon bool    `json:"closing_soon"` // Last 10% of the day
}

// DayEndedPayload is attached to DAY_ENDED when closing time hits.
type DayEndedPayload struct {
	Day int `json:"day"`
}

// DayStartedPayload is attached to DAY_STARTED once the summary is dismissed.
type DayStartedPayload struct {
	Day int `json:"day"`
}

// TimeScalePayload is attached to TIME_SCALE_CHANGED.
type TimeScalePayload struct {
	Scale float64 `json:"scale"`
}

// Ticker manages the work-day clock. It does NOT know about jobs or money,
// only time progression: simulated seconds accumulate at `scale` per real
// second; crossing the day length ends the day and holds the clock until
// the daily summary is dismissed.
type Ticker struct {
	eventLog *events.EventLog
	logger   *logger.Logger

	tickRate     time.Duration
	dayLengthSec float64

	mu              sync.Mutex
	tickNumber      int64
	day             int
	elapsed         float64
	scale           float64
	awaitingSummary bool

	stopChan chan struct{}
}

// NewTicker creates a new work-day ticker.
func NewTicker(eventLog *events.EventLog, log *logger.Logger, tickRate time.Duration, dayLengthSec, scale float64) *Ticker {
	return &Ticker{
		eventLog:     eventLog,
		logger:       log,
		tickRate:     tickRate,
		dayLengthSec: dayLengthSec,
		day:          1,
		scale:        scale,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the clock loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("Work-day clock started. Doors open.")

	ticker := time.NewTicker(t.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Work-day clock stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Work-day clock stopped manually.")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop gracefully stops the ticker.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

// tick processes a single clock tick.
func (t *Ticker) tick() {
	started := time.Now()

	t.mu.Lock()
	if t.awaitingSummary {
		// Clock is held until the day summary is dismissed.
		t.mu.Unlock()
		return
	}

	t.tickNumber++
	t.elapsed += t.tickRate.Seconds() * t.scale

	payload := TimeTickPayload{
		Day:         t.day,
		Elapsed:     t.elapsed,
		Remaining:   t.dayLengthSec - t.elapsed,
		Scale:       t.scale,
		TickNumber:  t.tickNumber,
		ClosingSoon: t.elapsed >= t.dayLengthSec*0.9,
	}
	dayOver := t.elapsed >= t.dayLengthSec
	if dayOver {
		payload.Remaining = 0
		t.awaitingSummary = true
	}
	day := t.day
	t.mu.Unlock()

	t.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeTimeTick,
		ActorID:   "SYSTEM_CLOCK",
		Payload:   payload,
		GameDay:   day,
	})

	if dayOver {
		t.logger.Infof("Closing time on day %d. Holding clock for the daily summary.", day)
		t.eventLog.Append(events.ShopEvent{
			ID:        events.GenerateEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypeDayEnded,
			ActorID:   "SYSTEM_CLOCK",
			Payload:   DayEndedPayload{Day: day},
			GameDay:   day,
		})
	}

	metrics.Get().RecordTick(time.Since(started))
}

// AdvanceDay dismisses the daily summary: the day counter increments by
// exactly one and elapsed time resets to zero. Returns false if the day
// is not over yet.
func (t *Ticker) AdvanceDay() (newDay int, ok bool) {
	t.mu.Lock()
	if !t.awaitingSummary {
		t.mu.Unlock()
		return 0, false
	}
	t.day++
	t.elapsed = 0
	t.awaitingSummary = false
	newDay = t.day
	t.mu.Unlock()

	t.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeDayStarted,
		ActorID:   "SYSTEM_CLOCK",
		Payload:   DayStartedPayload{Day: newDay},
		GameDay:   newDay,
	})
	return newDay, true
}

// StartDay emits the opening event for the current day without advancing it.
// Used once at boot on a fresh database.
func (t *Ticker) StartDay() {
	t.mu.Lock()
	day := t.day
	t.mu.Unlock()

	t.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeDayStarted,
		ActorID:   "SYSTEM_CLOCK",
		Payload:   DayStartedPayload{Day: day},
		GameDay:   day,
	})
}

// SetScale changes the simulation speed. Non-positive values are rejected.
func (t *Ticker) SetScale(scale float64) bool {
	if scale <= 0 {
		return false
	}
	t.mu.Lock()
	t.scale = scale
	day := t.day
	t.mu.Unlock()

	t.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeTimeScaleChanged,
		ActorID:   "SYSTEM_CLOCK",
		Payload:   TimeScalePayload{Scale: scale},
		GameDay:   day,
	})
	return true
}

// RestoreHold re-applies a closing-time hold after a restart. The held day
// already settled before shutdown, so no DAY_ENDED is emitted; the clock
// waits for the summary dismissal as if the process never stopped.
func (t *Ticker) RestoreHold(day int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if day > 0 {
		t.day = day
	}
	t.elapsed = t.dayLengthSec
	t.awaitingSummary = true
}

// SetTime allows external bootstrapping to restore the clock directly.
func (t *Ticker) SetTime(day int, elapsed float64, tickNumber int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if day > 0 {
		t.day = day
	}
	if elapsed >= 0 && elapsed < t.dayLengthSec {
		t.elapsed = elapsed
	}
	t.tickNumber = tickNumber
}

// Snapshot returns the current clock state.
func (t *Ticker) Snapshot() (day int, elapsed, scale float64, awaitingSummary bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.day, t.elapsed, t.scale, t.awaitingSummary
}
