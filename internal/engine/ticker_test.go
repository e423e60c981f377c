package engine

import (
	"testing"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

func TestClockHoldsAtClosingTime(t *testing.T) {
	// Setup: 1 second days, half-second ticks
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	tk := NewTicker(el, log, 500*time.Millisecond, 1.0, 1.0)

	// Act: two ticks reach closing time
	tk.tick()
	tk.tick()

	// Assert: day ended, clock held
	if got := len(el.GetByType(events.EventTypeDayEnded)); got != 1 {
		t.Fatalf("Expected 1 DAY_ENDED event, got %d", got)
	}
	_, _, _, awaiting := tk.Snapshot()
	if !awaiting {
		t.Fatalf("Expected clock held for the daily summary")
	}

	// Held clock ignores further ticks
	ticksBefore := len(el.GetByType(events.EventTypeTimeTick))
	tk.tick()
	tk.tick()
	if got := len(el.GetByType(events.EventTypeTimeTick)); got != ticksBefore {
		t.Errorf("Expected no TIME_TICK while held, got %d extra", got-ticksBefore)
	}
}

func TestAdvanceDayIncrementsByExactlyOne(t *testing.T) {
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	tk := NewTicker(el, log, 500*time.Millisecond, 1.0, 1.0)

	// Dismissing before closing time does nothing
	if _, ok := tk.AdvanceDay(); ok {
		t.Fatalf("Expected AdvanceDay to fail while the day is running")
	}

	tk.tick()
	tk.tick()

	newDay, ok := tk.AdvanceDay()
	if !ok || newDay != 2 {
		t.Fatalf("Expected day 2, got %d (ok=%v)", newDay, ok)
	}

	day, elapsed, _, awaiting := tk.Snapshot()
	if day != 2 || elapsed != 0 || awaiting {
		t.Errorf("Expected fresh day 2 with zero elapsed, got day=%d elapsed=%v awaiting=%v", day, elapsed, awaiting)
	}
	if got := len(el.GetByType(events.EventTypeDayStarted)); got != 1 {
		t.Errorf("Expected 1 DAY_STARTED event, got %d", got)
	}

	// Double dismissal is rejected
	if _, ok := tk.AdvanceDay(); ok {
		t.Errorf("Expected second AdvanceDay to fail")
	}
}

func TestTimeScaleSpeedsUpTheDay(t *testing.T) {
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	tk := NewTicker(el, log, 500*time.Millisecond, 10.0, 1.0)

	if tk.SetScale(0) {
		t.Fatalf("Expected non-positive scale to be rejected")
	}
	if !tk.SetScale(4.0) {
		t.Fatalf("Expected SetScale(4) to succeed")
	}

	// 5 ticks x 0.5s x 4.0 = 10 simulated seconds: closing time
	for i := 0; i < 5; i++ {
		tk.tick()
	}
	if got := len(el.GetByType(events.EventTypeDayEnded)); got != 1 {
		t.Errorf("Expected day to end after 5 scaled ticks, got %d DAY_ENDED events", got)
	}
	if got := len(el.GetByType(events.EventTypeTimeScaleChanged)); got != 1 {
		t.Errorf("Expected 1 TIME_SCALE_CHANGED event, got %d", got)
	}
}

func TestSetTimeRestoresClock(t *testing.T) {
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	tk := NewTicker(el, log, 500*time.Millisecond, 480.0, 1.0)

	tk.SetTime(7, 120.5, 900)

	day, elapsed, _, _ := tk.Snapshot()
	if day != 7 || elapsed != 120.5 {
		t.Errorf("Expected day 7 at 120.5s, got day=%d elapsed=%v", day, elapsed)
	}

	// Out-of-range elapsed is ignored, day stays
	tk.SetTime(0, 9999, 901)
	day, elapsed, _, _ = tk.Snapshot()
	if day != 7 || elapsed != 120.5 {
		t.Errorf("Expected restore to ignore bad values, got day=%d elapsed=%v", day, elapsed)
	}
}

func TestRestoreHoldResumesAwaitingSummary(t *testing.T) {
	// Setup: a clock rebuilt after the process stopped at closing time
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	tk := NewTicker(el, log, 500*time.Millisecond, 1.0, 1.0)

	// Act
	tk.RestoreHold(3)

	// Assert: held on day 3, and the already-settled day does not replay
	day, _, _, awaiting := tk.Snapshot()
	if day != 3 || !awaiting {
		t.Fatalf("Expected held clock on day 3, got day=%d awaiting=%v", day, awaiting)
	}
	tk.tick()
	tk.tick()
	if got := len(el.GetByType(events.EventTypeDayEnded)); got != 0 {
		t.Errorf("Expected no DAY_ENDED after a restored hold, got %d", got)
	}
	if got := len(el.GetByType(events.EventTypeTimeTick)); got != 0 {
		t.Errorf("Expected no TIME_TICK while held, got %d", got)
	}

	// Dismissing the summary opens day 4 normally
	newDay, ok := tk.AdvanceDay()
	if !ok || newDay != 4 {
		t.Fatalf("Expected day 4 after dismissal, got %d (ok=%v)", newDay, ok)
	}
}
