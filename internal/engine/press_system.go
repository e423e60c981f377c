package engine

import (
	"fmt"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
)

// The carousel press: six screen heads on the turret, four platen arms
// underneath. Station 0 is where the operator stands; rotating brings
// a different head or platen to the station.
const (
	HeadCount   = 6
	PlatenCount = 4
)

// Platen is one arm of the carousel.
type Platen struct {
	JobID   string   `json:"job_id,omitempty"` // Empty when no shirt is loaded
	Loaded  bool     `json:"loaded"`
	Stamped []string `json:"stamped,omitempty"` // Screen ids already pulled onto the shirt
}

func (p *Platen) hasStamp(screenID string) bool {
	for _, id := range p.Stamped {
		if id == screenID {
			return true
		}
	}
	return false
}

// PressStatePayload is attached to every press event so clients can
// redraw the fixture without extra queries.
type PressStatePayload struct {
	Heads        [HeadCount]string   `json:"heads"` // Screen ids, "" for empty
	Platens      [PlatenCount]Platen `json:"platens"`
	HeadIndex    int                 `json:"head_index"`   // Head at station 0
	PlatenIndex  int                 `json:"platen_index"` // Platen at station 0
	BusyTicks    int                 `json:"busy_ticks"`
	ActiveScreen string              `json:"active_screen,omitempty"`
}

// ShirtUnloadedPayload is attached to SHIRT_UNLOADED.
type ShirtUnloadedPayload struct {
	JobID    string `json:"job_id"`
	Platen   int    `json:"platen"`
	Finished bool   `json:"finished"` // Every separation stamped
}

// PressSystem is the carousel state machine: mod-6 head rotation, mod-4
// platen rotation, and a tick-gated busy flag as re-entry guard. It is pure
// index bookkeeping; the client animates the spinning.
type PressSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger

	heads       [HeadCount]string
	platens     [PlatenCount]Platen
	headIndex   int
	platenIndex int
	busyTicks   int
	busyFor     int // Ticks the guard arms after each rotate/print

	lookupJob    func(string) *job.Job
	lookupScreen func(string) *job.Screen
}

// NewPressSystem creates the carousel.
func NewPressSystem(eventLog *events.EventLog, log *logger.Logger, busyTicks int) *PressSystem {
	return &PressSystem{
		eventLog:     eventLog,
		logger:       log,
		busyFor:      busyTicks,
		lookupJob:    func(string) *job.Job { return nil },
		lookupScreen: func(string) *job.Screen { return nil },
	}
}

// SetLookups wires the job and screen resolvers.
func (ps *PressSystem) SetLookups(jobFn func(string) *job.Job, screenFn func(string) *job.Screen) {
	ps.lookupJob = jobFn
	ps.lookupScreen = screenFn
}

// Busy reports whether the press is mid-motion.
func (ps *PressSystem) Busy() bool {
	return ps.busyTicks > 0
}

// OnTimeTick counts the busy guard down.
func (ps *PressSystem) OnTimeTick(event events.ShopEvent) {
	if ps.busyTicks > 0 {
		ps.busyTicks--
	}
}

// MountScreen clamps a burned screen into a head slot.
func (ps *PressSystem) MountScreen(head int, screenID, actor string, day int) error {
	if err := ps.guard(); err != nil {
		return err
	}
	if head < 0 || head >= HeadCount {
		return fmt.Errorf("head index %d out of range", head)
	}
	if ps.heads[head] != "" {
		return fmt.Errorf("head %d already holds screen %s", head, ps.heads[head])
	}
	s := ps.lookupScreen(screenID)
	if s == nil || !s.Burned {
		return fmt.Errorf("screen %s is not burned", screenID)
	}
	for i, mounted := range ps.heads {
		if mounted == screenID {
			return fmt.Errorf("screen %s is already on head %d", screenID, i)
		}
	}

	ps.heads[head] = screenID
	ps.emit(events.EventTypeScreenMounted, actor, screenID, day)
	return nil
}

// LoadShirt puts a blank on a platen for an open job.
func (ps *PressSystem) LoadShirt(platen int, jobID, actor string, day int) error {
	if err := ps.guard(); err != nil {
		return err
	}
	if platen < 0 || platen >= PlatenCount {
		return fmt.Errorf("platen index %d out of range", platen)
	}
	if ps.platens[platen].Loaded {
		return fmt.Errorf("platen %d already has a shirt", platen)
	}
	j := ps.lookupJob(jobID)
	if j == nil || !j.IsOpen() {
		return fmt.Errorf("job %s is not in the shop", jobID)
	}

	ps.platens[platen] = Platen{JobID: jobID, Loaded: true}
	ps.emit(events.EventTypeShirtLoaded, actor, jobID, day)
	return nil
}

// RotateHeads turns the turret one position (mod 6).
func (ps *PressSystem) RotateHeads(actor string, day int) error {
	if err := ps.guard(); err != nil {
		return err
	}
	ps.headIndex = (ps.headIndex + 1) % HeadCount
	ps.busyTicks = ps.busyFor
	ps.emit(events.EventTypeCarouselRotated, actor, "heads", day)
	return nil
}

// RotateCarousel indexes the platen arms one position (mod 4).
func (ps *PressSystem) RotateCarousel(actor string, day int) error {
	if err := ps.guard(); err != nil {
		return err
	}
	ps.platenIndex = (ps.platenIndex + 1) % PlatenCount
	ps.busyTicks = ps.busyFor
	ps.emit(events.EventTypeCarouselRotated, actor, "platens", day)
	return nil
}

// PullPrint stamps the station screen onto the station shirt. The screen's
// job must match the shirt's job.
func (ps *PressSystem) PullPrint(actor string, day int) error {
	if err := ps.guard(); err != nil {
		return err
	}
	screenID := ps.heads[ps.headIndex]
	if screenID == "" {
		return fmt.Errorf("no screen on head %d at the station", ps.headIndex)
	}
	arm := &ps.platens[ps.platenIndex]
	if !arm.Loaded {
		return fmt.Errorf("no shirt on platen %d at the station", ps.platenIndex)
	}
	s := ps.lookupScreen(screenID)
	if s == nil {
		// The screen was reclaimed out from under us; clear the head.
		ps.heads[ps.headIndex] = ""
		return fmt.Errorf("screen %s is gone", screenID)
	}
	if s.JobID != arm.JobID {
		return fmt.Errorf("screen %s belongs to job %s, shirt is for job %s", screenID, s.JobID, arm.JobID)
	}

	j := ps.lookupJob(arm.JobID)
	if j == nil || !j.IsOpen() {
		return fmt.Errorf("job %s is not in the shop", arm.JobID)
	}
	if arm.hasStamp(screenID) {
		return fmt.Errorf("screen %s is already stamped on this shirt", screenID)
	}
	if len(arm.Stamped) >= j.TotalColors() {
		return fmt.Errorf("shirt on platen %d already has every separation", ps.platenIndex)
	}

	arm.Stamped = append(arm.Stamped, screenID)
	ps.busyTicks = ps.busyFor
	metrics.Get().RecordPrintPulled()
	ps.emit(events.EventTypePrintPulled, actor, arm.JobID, day)
	return nil
}

// UnloadShirt takes the garment off a platen. A shirt with every separation
// stamped counts toward the job's printed total (via SHIRT_UNLOADED).
func (ps *PressSystem) UnloadShirt(platen int, actor string, day int) error {
	if err := ps.guard(); err != nil {
		return err
	}
	if platen < 0 || platen >= PlatenCount {
		return fmt.Errorf("platen index %d out of range", platen)
	}
	arm := ps.platens[platen]
	if !arm.Loaded {
		return fmt.Errorf("platen %d is empty", platen)
	}

	finished := false
	if j := ps.lookupJob(arm.JobID); j != nil {
		finished = len(arm.Stamped) >= j.TotalColors()
	}
	ps.platens[platen] = Platen{}

	ps.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeShirtUnloaded,
		ActorID:   actor,
		TargetID:  arm.JobID,
		Payload:   ShirtUnloadedPayload{JobID: arm.JobID, Platen: platen, Finished: finished},
		GameDay:   day,
	})
	return nil
}

// OnScreenReclaimed clears reclaimed screens out of the heads and dumps
// half-printed shirts whose job left the shop.
func (ps *PressSystem) OnScreenReclaimed(event events.ShopEvent) {
	payload, ok := event.Payload.(ScreenReclaimedPayload)
	if !ok {
		return
	}
	for i, mounted := range ps.heads {
		if mounted == payload.ScreenID {
			ps.heads[i] = ""
		}
	}
	for i, arm := range ps.platens {
		if arm.Loaded && arm.JobID == payload.JobID {
			ps.platens[i] = Platen{}
		}
	}
}

// State returns the press payload for status queries.
func (ps *PressSystem) State() PressStatePayload {
	return PressStatePayload{
		Heads:        ps.heads,
		Platens:      ps.platens,
		HeadIndex:    ps.headIndex,
		PlatenIndex:  ps.platenIndex,
		BusyTicks:    ps.busyTicks,
		ActiveScreen: ps.heads[ps.headIndex],
	}
}

func (ps *PressSystem) guard() error {
	if ps.busyTicks > 0 {
		return fmt.Errorf("press is busy for %d more ticks", ps.busyTicks)
	}
	return nil
}

func (ps *PressSystem) emit(t events.EventType, actor, target string, day int) {
	ps.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      t,
		ActorID:   actor,
		TargetID:  target,
		Payload:   ps.State(),
		GameDay:   day,
	})
}
