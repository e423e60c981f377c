package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

// Engine is the central orchestrator that wires the event log to the shop
// mechanics. Commands from the network layer validate and mutate through the
// subsystems under one lock; time-driven transitions arrive through the
// dispatch loop reading the same event log the clients stream from.
type Engine struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	balance  config.Balance
	ticker   *Ticker

	// Sub-systems
	jobSystem     *JobSystem
	screenSystem  *ScreenSystem
	economySystem *EconomySystem
	pressSystem   *PressSystem

	// State
	mu                 sync.Mutex
	shop               *shop.Shop
	lastProcessedEvent int
}

// NewEngine initializes the shop systems and their cross-wiring.
func NewEngine(eventLog *events.EventLog, log *logger.Logger, cfg config.Server, sh *shop.Shop) *Engine {
	bal := cfg.BalanceFor()

	e := &Engine{
		eventLog: eventLog,
		logger:   log,
		balance:  bal,
		ticker:   NewTicker(eventLog, log, cfg.TickRate(), bal.DayLengthSec, cfg.TimeScale),
		shop:     sh,

		jobSystem:     NewJobSystem(eventLog, log, bal, sh),
		screenSystem:  NewScreenSystem(eventLog, log),
		economySystem: NewEconomySystem(eventLog, log, bal, sh),
		pressSystem:   NewPressSystem(eventLog, log, bal.PressBusyTicks),
	}

	e.screenSystem.SetJobLookup(e.jobSystem.Get)
	e.jobSystem.SetScreensReady(e.screenSystem.Ready)
	e.pressSystem.SetLookups(e.jobSystem.Get, e.screenSystem.Get)

	return e
}

// Start spawns the Ticker and the event-processing loop.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting shop simulation engine...")

	go e.ticker.Start(ctx)
	go e.processEvents(ctx)
}

// OverrideTime allows bootstrapping to restore the clock from storage.
func (e *Engine) OverrideTime(day int, elapsed float64, tickNumber int64) {
	e.ticker.SetTime(day, elapsed, tickNumber)
	e.shop.Day = day
}

// RestoreClosedDay re-applies a closing-time hold from before a restart so
// the already-settled day does not replay and settle twice.
func (e *Engine) RestoreClosedDay(day int) {
	e.ticker.RestoreHold(day)
	e.shop.Day = day
}

// BeginFirstDay opens day 1 on a fresh database, rolling the first offers.
func (e *Engine) BeginFirstDay() {
	e.ticker.StartDay()
}

// RestoreJob puts a persisted job back into the simulation.
func (e *Engine) RestoreJob(j *job.Job) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobSystem.Restore(j)
}

// RestoreScreen puts a persisted screen back into the simulation.
func (e *Engine) RestoreScreen(s *job.Screen) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.screenSystem.Restore(s)
}

// GetEventLog exposes the event log for the network layer.
func (e *Engine) GetEventLog() *events.EventLog {
	return e.eventLog
}

// processEvents polls the EventLog and dispatches new items to subsystems.
func (e *Engine) processEvents(ctx context.Context) {
	pollInterval := time.NewTicker(100 * time.Millisecond)
	defer pollInterval.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("EventProcessor stopped.")
			return
		case <-pollInterval.C:
			allEvents := e.eventLog.Replay()
			if len(allEvents) <= e.lastProcessedEvent {
				continue
			}
			newEvents := allEvents[e.lastProcessedEvent:]
			e.lastProcessedEvent = len(allEvents)

			e.mu.Lock()
			for _, event := range newEvents {
				e.dispatch(event)
			}
			e.mu.Unlock()
		}
	}
}

// dispatch routes a ShopEvent to the subsystems that react to it.
// Caller holds e.mu.
func (e *Engine) dispatch(event events.ShopEvent) {
	switch event.Type {
	case events.EventTypeTimeTick:
		e.pressSystem.OnTimeTick(event)

	case events.EventTypeDayEnded:
		e.economySystem.OnDayEnded(event)

	case events.EventTypeDayStarted:
		e.economySystem.OnDayStarted(event)
		e.jobSystem.OnDayStarted(event)

	case events.EventTypeJobCompleted:
		e.economySystem.OnJobCompleted(event)
		e.screenSystem.OnJobClosed(event)

	case events.EventTypeJobDeclined:
		if payload, ok := event.Payload.(JobClosedPayload); ok && payload.WasAccepted {
			e.screenSystem.OnJobClosed(event)
		}

	case events.EventTypeScreenReclaimed:
		e.pressSystem.OnScreenReclaimed(event)

	case events.EventTypeShirtUnloaded:
		e.jobSystem.OnShirtFinished(event)
	}
}

// gameplayGuard rejects commands once the shop is bankrupt.
func (e *Engine) gameplayGuard() error {
	if e.shop.Bankrupt {
		return fmt.Errorf("the shop is bankrupt; gameplay is over")
	}
	return nil
}

// day returns the current game day. Caller holds e.mu or tolerates staleness.
func (e *Engine) day() int {
	d, _, _, _ := e.ticker.Snapshot()
	return d
}

// --- Command facade: validated entry points for the network layer ---

// AcceptJob takes an offer off the terminal board.
func (e *Engine) AcceptJob(jobID, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.jobSystem.Accept(jobID, actor, e.day())
}

// DeclineJob passes on an offer or cancels accepted work.
func (e *Engine) DeclineJob(jobID, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.jobSystem.Decline(jobID, actor, e.day())
}

// CompleteJob delivers a finished order.
func (e *Engine) CompleteJob(jobID, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.jobSystem.Complete(jobID, actor, e.day())
}

// BurnScreen exposes one separation of an accepted job.
func (e *Engine) BurnScreen(jobID string, loc catalog.LocationID, colorIndex int, actor string) (*job.Screen, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return nil, err
	}
	return e.screenSystem.Burn(jobID, loc, colorIndex, actor, e.day())
}

// MountScreen clamps a burned screen onto a press head.
func (e *Engine) MountScreen(head int, screenID, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.pressSystem.MountScreen(head, screenID, actor, e.day())
}

// LoadShirt puts a blank on a platen.
func (e *Engine) LoadShirt(platen int, jobID, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.pressSystem.LoadShirt(platen, jobID, actor, e.day())
}

// RotateHeads turns the screen turret one position.
func (e *Engine) RotateHeads(actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.pressSystem.RotateHeads(actor, e.day())
}

// RotateCarousel indexes the platen arms one position.
func (e *Engine) RotateCarousel(actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.pressSystem.RotateCarousel(actor, e.day())
}

// PullPrint stamps the station screen onto the station shirt.
func (e *Engine) PullPrint(actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.pressSystem.PullPrint(actor, e.day())
}

// UnloadShirt takes the garment off a platen.
func (e *Engine) UnloadShirt(platen int, actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.pressSystem.UnloadShirt(platen, actor, e.day())
}

// HireEmployee puts one more printer on the payroll.
func (e *Engine) HireEmployee(actor string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.gameplayGuard(); err != nil {
		return err
	}
	return e.economySystem.Hire(actor, e.day())
}

// AdvanceDay dismisses the daily summary. Allowed even when bankrupt so
// the terminal can show the final ledger.
func (e *Engine) AdvanceDay() (int, error) {
	newDay, ok := e.ticker.AdvanceDay()
	if !ok {
		return 0, fmt.Errorf("the day is not over yet")
	}
	return newDay, nil
}

// SetTimeScale changes simulation speed.
func (e *Engine) SetTimeScale(scale float64) error {
	if !e.ticker.SetScale(scale) {
		return fmt.Errorf("time scale must be positive, got %v", scale)
	}
	return nil
}

// --- Queries ---

// Shop returns the ledger state. Callers must treat it as read-only.
func (e *Engine) Shop() shop.Shop {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.shop
}

// Offers lists the jobs on the terminal board.
func (e *Engine) Offers() []job.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	var result []job.Job
	for _, j := range e.jobSystem.Offers() {
		result = append(result, *j)
	}
	return result
}

// OpenJobs lists accepted, undelivered orders with their screen progress.
func (e *Engine) OpenJobs() []JobProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	var result []JobProgress
	for _, j := range e.jobSystem.OpenJobs() {
		result = append(result, JobProgress{
			Job:             *j,
			ScreensBurned:   e.screenSystem.BurnedFor(j.ID),
			ScreensRequired: j.TotalColors(),
			ScreensReady:    e.screenSystem.Ready(j),
		})
	}
	return result
}

// JobProgress pairs a job with its screen-room progress for the terminal.
type JobProgress struct {
	Job             job.Job `json:"job"`
	ScreensBurned   int     `json:"screens_burned"`
	ScreensRequired int     `json:"screens_required"`
	ScreensReady    bool    `json:"screens_ready"`
}

// PressState returns the carousel snapshot.
func (e *Engine) PressState() PressStatePayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pressSystem.State()
}

// Clock returns the work-day clock snapshot.
func (e *Engine) Clock() (day int, elapsed, scale float64, awaitingSummary bool) {
	return e.ticker.Snapshot()
}

// DaySummary is what the end-of-day dialog shows before the next day opens.
type DaySummary struct {
	Day               int   `json:"day"`
	EarningsCents     int64 `json:"earnings_cents"`
	CostsCents        int64 `json:"costs_cents"`
	BalanceCents      int64 `json:"balance_cents"`
	Staff             int   `json:"staff"`
	OpenJobs          int   `json:"open_jobs"`
	OverdueJobs       int   `json:"overdue_jobs"`
	Bankrupt          bool  `json:"bankrupt"`
	AwaitingDismissal bool  `json:"awaiting_dismissal"`
}

// Summary builds the current daily summary.
func (e *Engine) Summary() DaySummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	day, _, _, awaiting := e.ticker.Snapshot()
	overdue := 0
	open := e.jobSystem.OpenJobs()
	for _, j := range open {
		if j.Overdue {
			overdue++
		}
	}
	return DaySummary{
		Day:               day,
		EarningsCents:     e.shop.DailyEarningsCents,
		CostsCents:        e.shop.DailyCosts(e.balance.RentCents, e.balance.WageCents),
		BalanceCents:      e.shop.MoneyCents,
		Staff:             e.shop.Staff,
		OpenJobs:          len(open),
		OverdueJobs:       overdue,
		Bankrupt:          e.shop.Bankrupt,
		AwaitingDismissal: awaiting,
	}
}

// SnapshotJobs copies the job table for the backup routine.
func (e *Engine) SnapshotJobs() []job.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	var result []job.Job
	for _, j := range e.jobSystem.Jobs() {
		result = append(result, *j)
	}
	return result
}

// SnapshotScreens copies the screen rack for the backup routine.
func (e *Engine) SnapshotScreens() []job.Screen {
	e.mu.Lock()
	defer e.mu.Unlock()
	var result []job.Screen
	for _, s := range e.screenSystem.Screens() {
		result = append(result, *s)
	}
	return result
}
