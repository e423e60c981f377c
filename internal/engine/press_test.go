package engine

import (
	"testing"

	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

// newTestPress wires a press to a single accepted two-color job with both
// screens burned. Returns the press, the screen room, and the job.
func newTestPress(t *testing.T) (*PressSystem, *ScreenSystem, *job.Job) {
	t.Helper()

	el := events.NewEventLog(nil)
	log := logger.NewLogger()

	j := &job.Job{
		ID:       "JOB_P",
		Customer: "Two Stroke Moto Club",
		Garment:  catalog.GarmentWhite,
		Prints:   []job.Print{{Location: catalog.LocationFront, Colors: 2}},
		Quantity: 2,
		Status:   job.StatusAccepted,
	}
	jobs := map[string]*job.Job{j.ID: j}
	lookupJob := func(id string) *job.Job { return jobs[id] }

	ss := NewScreenSystem(el, log)
	ss.SetJobLookup(lookupJob)
	if _, err := ss.Burn(j.ID, catalog.LocationFront, 0, "P1", 1); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
	if _, err := ss.Burn(j.ID, catalog.LocationFront, 1, "P1", 1); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}

	ps := NewPressSystem(el, log, 2)
	ps.SetLookups(lookupJob, ss.Get)
	return ps, ss, j
}

func tickPress(ps *PressSystem, n int) {
	for i := 0; i < n; i++ {
		ps.OnTimeTick(events.ShopEvent{Type: events.EventTypeTimeTick})
	}
}

func TestHeadRotationWrapsAtSix(t *testing.T) {
	ps, _, _ := newTestPress(t)

	for i := 0; i < HeadCount; i++ {
		if got := ps.State().HeadIndex; got != i {
			t.Fatalf("Expected head index %d, got %d", i, got)
		}
		if err := ps.RotateHeads("P1", 1); err != nil {
			t.Fatalf("RotateHeads failed: %v", err)
		}
		tickPress(ps, 2)
	}

	if got := ps.State().HeadIndex; got != 0 {
		t.Errorf("Expected head index to wrap to 0 after %d rotations, got %d", HeadCount, got)
	}
}

func TestCarouselWrapsAtFour(t *testing.T) {
	ps, _, _ := newTestPress(t)

	for i := 0; i < PlatenCount; i++ {
		if got := ps.State().PlatenIndex; got != i {
			t.Fatalf("Expected platen index %d, got %d", i, got)
		}
		if err := ps.RotateCarousel("P1", 1); err != nil {
			t.Fatalf("RotateCarousel failed: %v", err)
		}
		tickPress(ps, 2)
	}

	if got := ps.State().PlatenIndex; got != 0 {
		t.Errorf("Expected platen index to wrap to 0 after %d rotations, got %d", PlatenCount, got)
	}
}

func TestBusyGuardBlocksReentry(t *testing.T) {
	ps, _, _ := newTestPress(t)

	if err := ps.RotateHeads("P1", 1); err != nil {
		t.Fatalf("First rotation failed: %v", err)
	}

	// Mid-motion: everything is rejected
	if err := ps.RotateHeads("P1", 1); err == nil {
		t.Errorf("Expected rotation while busy to fail")
	}
	if err := ps.RotateCarousel("P1", 1); err == nil {
		t.Errorf("Expected carousel rotation while busy to fail")
	}
	if err := ps.PullPrint("P1", 1); err == nil {
		t.Errorf("Expected pull while busy to fail")
	}

	// One tick is not enough with busyFor=2
	tickPress(ps, 1)
	if !ps.Busy() {
		t.Fatalf("Expected press still busy after 1 tick")
	}

	tickPress(ps, 1)
	if ps.Busy() {
		t.Fatalf("Expected press idle after 2 ticks")
	}
	if err := ps.RotateHeads("P1", 1); err != nil {
		t.Errorf("Expected rotation after guard expired, got %v", err)
	}
}

func TestPrintRunFinishesShirt(t *testing.T) {
	ps, ss, j := newTestPress(t)

	// Mount both separations on heads 0 and 1
	var screenIDs []string
	for id := range ss.Screens() {
		screenIDs = append(screenIDs, id)
	}
	if err := ps.MountScreen(0, screenIDs[0], "P1", 1); err != nil {
		t.Fatalf("MountScreen failed: %v", err)
	}
	if err := ps.MountScreen(1, screenIDs[1], "P1", 1); err != nil {
		t.Fatalf("MountScreen failed: %v", err)
	}

	// Load a blank at the station
	if err := ps.LoadShirt(0, j.ID, "P1", 1); err != nil {
		t.Fatalf("LoadShirt failed: %v", err)
	}

	// Pull the first separation, rotate to the second, pull again
	if err := ps.PullPrint("P1", 1); err != nil {
		t.Fatalf("First pull failed: %v", err)
	}
	tickPress(ps, 2)
	if err := ps.RotateHeads("P1", 1); err != nil {
		t.Fatalf("RotateHeads failed: %v", err)
	}
	tickPress(ps, 2)
	if err := ps.PullPrint("P1", 1); err != nil {
		t.Fatalf("Second pull failed: %v", err)
	}
	tickPress(ps, 2)

	// Third pull must be rejected: every separation is stamped
	if err := ps.PullPrint("P1", 1); err == nil {
		t.Errorf("Expected pull beyond the job's separations to fail")
	}

	// Unload: the shirt counts as finished
	el := ps.eventLog
	if err := ps.UnloadShirt(0, "P1", 1); err != nil {
		t.Fatalf("UnloadShirt failed: %v", err)
	}
	unloaded := el.GetByType(events.EventTypeShirtUnloaded)
	if len(unloaded) != 1 {
		t.Fatalf("Expected 1 SHIRT_UNLOADED event, got %d", len(unloaded))
	}
	payload := unloaded[0].Payload.(ShirtUnloadedPayload)
	if !payload.Finished {
		t.Errorf("Expected unloaded shirt to be finished")
	}
	if ps.State().Platens[0].Loaded {
		t.Errorf("Expected platen 0 empty after unload")
	}
}

func TestPullRejectsMismatchedJob(t *testing.T) {
	ps, ss, j := newTestPress(t)

	// Second job sharing the press
	other := &job.Job{
		ID:       "JOB_Q",
		Customer: "Marigold Yoga",
		Garment:  catalog.GarmentWhite,
		Prints:   []job.Print{{Location: catalog.LocationBack, Colors: 1}},
		Quantity: 1,
		Status:   job.StatusAccepted,
	}
	jobs := map[string]*job.Job{j.ID: j, other.ID: other}
	ps.SetLookups(func(id string) *job.Job { return jobs[id] }, ss.Get)
	ss.SetJobLookup(func(id string) *job.Job { return jobs[id] })

	var screenID string
	for id := range ss.Screens() {
		screenID = id
		break
	}
	if err := ps.MountScreen(0, screenID, "P1", 1); err != nil {
		t.Fatalf("MountScreen failed: %v", err)
	}

	// Shirt at the station belongs to the other job
	if err := ps.LoadShirt(0, other.ID, "P1", 1); err != nil {
		t.Fatalf("LoadShirt failed: %v", err)
	}

	if err := ps.PullPrint("P1", 1); err == nil {
		t.Errorf("Expected pull with mismatched screen/shirt jobs to fail")
	}
}

func TestReclaimClearsHeadsAndPlatens(t *testing.T) {
	ps, ss, j := newTestPress(t)

	var screenID string
	for id := range ss.Screens() {
		screenID = id
		break
	}
	ps.MountScreen(0, screenID, "P1", 1)
	ps.LoadShirt(0, j.ID, "P1", 1)

	// Act: the job's screens get reclaimed
	ps.OnScreenReclaimed(events.ShopEvent{
		Type:    events.EventTypeScreenReclaimed,
		Payload: ScreenReclaimedPayload{ScreenID: screenID, JobID: j.ID},
	})

	// Assert: head empty, half-printed shirt dumped
	state := ps.State()
	if state.Heads[0] != "" {
		t.Errorf("Expected head 0 cleared, still holds %s", state.Heads[0])
	}
	if state.Platens[0].Loaded {
		t.Errorf("Expected platen 0 dumped with the job gone")
	}
}

func TestRepeatPullSameScreenDoesNotFinishShirt(t *testing.T) {
	ps, ss, j := newTestPress(t)

	// Only the first separation is mounted
	var screenID string
	for id := range ss.Screens() {
		screenID = id
		break
	}
	if err := ps.MountScreen(0, screenID, "P1", 1); err != nil {
		t.Fatalf("MountScreen failed: %v", err)
	}
	if err := ps.LoadShirt(0, j.ID, "P1", 1); err != nil {
		t.Fatalf("LoadShirt failed: %v", err)
	}

	// First pull lands, the second pull of the same screen is rejected
	if err := ps.PullPrint("P1", 1); err != nil {
		t.Fatalf("First pull failed: %v", err)
	}
	tickPress(ps, 2)
	if err := ps.PullPrint("P1", 1); err == nil {
		t.Fatalf("Expected repeat pull of the same screen to fail")
	}

	// Unload: one of two separations stamped, shirt is not finished
	if err := ps.UnloadShirt(0, "P1", 1); err != nil {
		t.Fatalf("UnloadShirt failed: %v", err)
	}
	unloaded := ps.eventLog.GetByType(events.EventTypeShirtUnloaded)
	if len(unloaded) != 1 {
		t.Fatalf("Expected 1 SHIRT_UNLOADED event, got %d", len(unloaded))
	}
	if unloaded[0].Payload.(ShirtUnloadedPayload).Finished {
		t.Errorf("Expected a half-printed shirt to unload unfinished")
	}
}
