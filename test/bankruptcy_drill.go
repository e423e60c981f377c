// Package test holds runnable drills that exercise the full engine against
// a real clock, outside the unit-test suite.
package test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/engine"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

// DrillResult captures the outcome of one drill scenario.
type DrillResult struct {
	ScenarioName string
	Expected     string
	Actual       string
	Passed       bool
	Reason       string
}

// BankruptcyDrill runs a shop into the ground on purpose: nobody accepts
// work, rent and wages drain the till, and the drill verifies the failure
// path end to end against a fast real clock.
type BankruptcyDrill struct {
	eventLog *events.EventLog
	engine   *engine.Engine
	shop     *shop.Shop
	logger   *logger.Logger
	results  []DrillResult
}

// NewBankruptcyDrill builds the drill on the default balance with a clock
// fast enough to burn a work day in about a second.
func NewBankruptcyDrill() *BankruptcyDrill {
	log := logger.NewLogger()
	el := events.NewEventLog(nil)

	cfg := config.Server{
		TickMillis: 20,
		TimeScale:  480, // One 8-minute day per real second
		Difficulty: "default",
	}
	bal := cfg.BalanceFor()
	sh := shop.NewShop("SHOP_DRILL", "Doomed Prints", bal.StartingMoneyCents, bal.StartingStaff)

	return &BankruptcyDrill{
		eventLog: el,
		engine:   engine.NewEngine(el, log, cfg, sh),
		shop:     sh,
		logger:   log,
	}
}

// expectedBankruptcyDay is the day the default-balance till runs dry when
// no work is ever accepted.
func expectedBankruptcyDay() int {
	bal := config.DefaultBalance()
	balance := bal.StartingMoneyCents
	costs := bal.RentCents + bal.WageCents*int64(bal.StartingStaff)
	day := 0
	for balance > 0 {
		day++
		balance -= costs
	}
	return day
}

// Run plays the drill: idle through days until the shop goes under.
func (d *BankruptcyDrill) Run(ctx context.Context) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("DRILL: RUNNING THE SHOP DRY")
	fmt.Println(strings.Repeat("=", 60))

	d.engine.BeginFirstDay()
	d.engine.Start(ctx)

	wantDay := expectedBankruptcyDay()
	maxDays := wantDay + 3
	bankruptDay := 0

	for day := 1; day <= maxDays; day++ {
		if !d.waitForClosingTime(ctx, 10*time.Second) {
			d.record("Shop goes under", fmt.Sprintf("bankrupt on day %d", wantDay),
				"clock never reached closing time", false, "Ticker stalled")
			return
		}

		// Settlement rides the dispatch loop; give its poll a beat.
		time.Sleep(250 * time.Millisecond)

		summary := d.engine.Summary()
		fmt.Printf("Day %d: balance %d cents, costs %d cents, bankrupt=%v\n",
			summary.Day, summary.BalanceCents, summary.CostsCents, summary.Bankrupt)

		if summary.Bankrupt {
			bankruptDay = summary.Day
			break
		}
		if _, err := d.engine.AdvanceDay(); err != nil {
			d.record("Summary dismissal", "AdvanceDay succeeds", err.Error(), false, "Dismissal failed mid-drill")
			return
		}
	}

	d.record("Shop goes under",
		fmt.Sprintf("bankrupt on day %d", wantDay),
		fmt.Sprintf("bankrupt on day %d", bankruptDay),
		bankruptDay == wantDay,
		"Settlement schedule drains the till at the balance-table rate")

	transitions := len(d.eventLog.GetByType(events.EventTypeBankruptcy))
	d.record("Single transition", "1 BANKRUPTCY event",
		fmt.Sprintf("%d BANKRUPTCY events", transitions),
		transitions == 1,
		"Crossing zero fires the transition exactly once")

	err := d.engine.RotateHeads("DRILL")
	d.record("Input freeze", "gameplay rejected after bankruptcy",
		fmt.Sprintf("RotateHeads err=%v", err),
		err != nil,
		"Bankrupt shop accepts no floor actions")

	_, err = d.engine.AdvanceDay()
	d.record("Final ledger view", "AdvanceDay still allowed",
		fmt.Sprintf("AdvanceDay err=%v", err),
		err == nil,
		"The terminal can dismiss the last summary to show the final ledger")
}

// waitForClosingTime polls the clock until the day-end summary holds it.
func (d *BankruptcyDrill) waitForClosingTime(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(10 * time.Millisecond):
		}
		if _, _, _, awaiting := d.engine.Clock(); awaiting {
			return true
		}
	}
	return false
}

func (d *BankruptcyDrill) record(name, expected, actual string, passed bool, reason string) {
	d.results = append(d.results, DrillResult{
		ScenarioName: name,
		Expected:     expected,
		Actual:       actual,
		Passed:       passed,
		Reason:       reason,
	})
}

// Results returns all drill outcomes.
func (d *BankruptcyDrill) Results() []DrillResult {
	return d.results
}
