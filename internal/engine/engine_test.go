package engine

import (
	"testing"

	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

func newTestEngine() *Engine {
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	cfg := config.Server{TickMillis: 500, TimeScale: 1.0, Difficulty: "default"}
	bal := cfg.BalanceFor()
	sh := shop.NewShop("SHOP_TEST", "Test Prints", bal.StartingMoneyCents, bal.StartingStaff)
	return NewEngine(el, log, cfg, sh)
}

// drainEvents runs the dispatch loop synchronously instead of the background
// poller, so tests see subsystem reactions immediately.
func drainEvents(e *Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	all := e.eventLog.Replay()
	for _, event := range all[e.lastProcessedEvent:] {
		e.dispatch(event)
	}
	e.lastProcessedEvent = len(all)
}

func TestBankruptcyFreezesGameplayInput(t *testing.T) {
	// Setup: a bankrupt shop
	e := newTestEngine()
	e.shop.Bankrupt = true

	// Assert: every gameplay command is rejected
	if err := e.AcceptJob("JOB_X", "P1"); err == nil {
		t.Errorf("Expected AcceptJob to fail when bankrupt")
	}
	if _, err := e.BurnScreen("JOB_X", catalog.LocationFront, 0, "P1"); err == nil {
		t.Errorf("Expected BurnScreen to fail when bankrupt")
	}
	if err := e.RotateHeads("P1"); err == nil {
		t.Errorf("Expected RotateHeads to fail when bankrupt")
	}
	if err := e.HireEmployee("P1"); err == nil {
		t.Errorf("Expected HireEmployee to fail when bankrupt")
	}

	// The final summary can still be dismissed
	e.ticker.mu.Lock()
	e.ticker.awaitingSummary = true
	e.ticker.mu.Unlock()
	if _, err := e.AdvanceDay(); err != nil {
		t.Errorf("Expected AdvanceDay to work when bankrupt, got %v", err)
	}
}

func TestFullJobFlowThroughFacade(t *testing.T) {
	// Setup: one accepted single-color job, one shirt
	e := newTestEngine()
	e.RestoreJob(&job.Job{
		ID:           "JOB_F",
		Customer:     "Split Shift Coffee",
		Garment:      catalog.GarmentWhite,
		Prints:       []job.Print{{Location: catalog.LocationFront, Colors: 1}},
		Quantity:     1,
		DueDay:       3,
		PaymentCents: 960,
		Status:       job.StatusAccepted,
	})
	startBalance := e.Shop().MoneyCents

	// Burn the single separation and run the shirt
	s, err := e.BurnScreen("JOB_F", catalog.LocationFront, 0, "P1")
	if err != nil {
		t.Fatalf("BurnScreen failed: %v", err)
	}
	if err := e.MountScreen(0, s.ID, "P1"); err != nil {
		t.Fatalf("MountScreen failed: %v", err)
	}
	if err := e.LoadShirt(0, "JOB_F", "P1"); err != nil {
		t.Fatalf("LoadShirt failed: %v", err)
	}
	if err := e.PullPrint("P1"); err != nil {
		t.Fatalf("PullPrint failed: %v", err)
	}

	// The pull armed the busy guard; ticks clear it
	drainEvents(e)
	e.mu.Lock()
	e.pressSystem.OnTimeTick(events.ShopEvent{Type: events.EventTypeTimeTick})
	e.pressSystem.OnTimeTick(events.ShopEvent{Type: events.EventTypeTimeTick})
	e.mu.Unlock()

	if err := e.UnloadShirt(0, "P1"); err != nil {
		t.Fatalf("UnloadShirt failed: %v", err)
	}
	drainEvents(e)

	// Deliver and collect
	if err := e.CompleteJob("JOB_F", "P1"); err != nil {
		t.Fatalf("CompleteJob failed: %v", err)
	}
	drainEvents(e) // JOB_COMPLETED: payment + screen reclaim
	drainEvents(e) // SCREEN_RECLAIMED: clear the press

	if got := e.Shop().MoneyCents; got != startBalance+960 {
		t.Errorf("Expected balance %d after payment, got %d", startBalance+960, got)
	}
	if got := len(e.SnapshotScreens()); got != 0 {
		t.Errorf("Expected screens reclaimed after delivery, %d left", got)
	}
	if e.PressState().Heads[0] != "" {
		t.Errorf("Expected head 0 cleared after reclaim")
	}
}

func TestOpenJobsReportScreenProgress(t *testing.T) {
	e := newTestEngine()
	e.RestoreJob(&job.Job{
		ID:       "JOB_G",
		Customer: "Marigold Yoga",
		Garment:  catalog.GarmentBlack,
		Prints:   []job.Print{{Location: catalog.LocationBack, Colors: 2}},
		Quantity: 6,
		Status:   job.StatusAccepted,
	})

	if _, err := e.BurnScreen("JOB_G", catalog.LocationBack, 0, "P1"); err != nil {
		t.Fatalf("BurnScreen failed: %v", err)
	}

	open := e.OpenJobs()
	if len(open) != 1 {
		t.Fatalf("Expected 1 open job, got %d", len(open))
	}
	progress := open[0]
	if progress.ScreensBurned != 1 || progress.ScreensRequired != 2 {
		t.Errorf("Expected 1/2 screens burned, got %d/%d", progress.ScreensBurned, progress.ScreensRequired)
	}
	if progress.ScreensReady {
		t.Errorf("Expected job not screen-ready with one separation missing")
	}
}
