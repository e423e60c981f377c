package engine

import (
	"fmt"
	"time"

	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

// LedgerPayload is attached to LEDGER_DEPOSIT / LEDGER_WITHDRAW.
type LedgerPayload struct {
	AmountCents  int64  `json:"amount_cents"`
	BalanceCents int64  `json:"balance_cents"`
	Reason       string `json:"reason"`
	RefID        string `json:"ref_id,omitempty"`
}

// BankruptcyPayload is attached to the single BANKRUPTCY event.
type BankruptcyPayload struct {
	Day        int    `json:"day"`
	LastCharge string `json:"last_charge"`
}

// HirePayload is attached to EMPLOYEE_HIRED.
type HirePayload struct {
	Staff         int   `json:"staff"`
	HireCostCents int64 `json:"hire_cost_cents"`
}

// EconomySystem keeps the single ledger of the shop. Money never goes
// negative: a charge that would cross zero clamps the balance and fires
// exactly one bankruptcy transition, after which gameplay input stops.
type EconomySystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	balance  config.Balance
	shop     *shop.Shop
}

// NewEconomySystem creates the bookkeeper.
func NewEconomySystem(eventLog *events.EventLog, log *logger.Logger, bal config.Balance, sh *shop.Shop) *EconomySystem {
	return &EconomySystem{
		eventLog: eventLog,
		logger:   log,
		balance:  bal,
		shop:     sh,
	}
}

// Bankrupt reports whether the shop has gone under.
func (es *EconomySystem) Bankrupt() bool {
	return es.shop.Bankrupt
}

// Deposit adds money to the ledger and today's earnings.
func (es *EconomySystem) Deposit(cents int64, reason, refID string, day int) {
	if cents <= 0 {
		return
	}
	es.shop.Deposit(cents)
	es.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeLedgerDeposit,
		ActorID:   "SYSTEM_LEDGER",
		TargetID:  refID,
		Payload: LedgerPayload{
			AmountCents:  cents,
			BalanceCents: es.shop.MoneyCents,
			Reason:       reason,
			RefID:        refID,
		},
		GameDay: day,
	})
}

// Withdraw charges the ledger. Crossing zero clamps the balance and emits
// the bankruptcy transition exactly once.
func (es *EconomySystem) Withdraw(cents int64, reason, refID string, day int) {
	if cents <= 0 {
		return
	}
	wentBankrupt := es.shop.Withdraw(cents)
	es.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeLedgerWithdraw,
		ActorID:   "SYSTEM_LEDGER",
		TargetID:  refID,
		Payload: LedgerPayload{
			AmountCents:  cents,
			BalanceCents: es.shop.MoneyCents,
			Reason:       reason,
			RefID:        refID,
		},
		GameDay: day,
	})

	if wentBankrupt {
		es.logger.Error("THE SHOP IS BANKRUPT. Charge that broke the bank: " + reason)
		es.eventLog.Append(events.ShopEvent{
			ID:        events.GenerateEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypeBankruptcy,
			ActorID:   "SYSTEM_LEDGER",
			Payload:   BankruptcyPayload{Day: day, LastCharge: reason},
			GameDay:   day,
		})
	}
}

// OnJobCompleted collects the payment fixed at job creation.
func (es *EconomySystem) OnJobCompleted(event events.ShopEvent) {
	payload, ok := event.Payload.(JobClosedPayload)
	if !ok {
		return
	}
	es.Deposit(payload.PaymentCents, "payment: "+payload.Customer, payload.JobID, event.GameDay)
}

// OnDayEnded settles the fixed daily costs: rent plus wages.
func (es *EconomySystem) OnDayEnded(event events.ShopEvent) {
	payload, ok := event.Payload.(DayEndedPayload)
	if !ok {
		return
	}
	costs := es.shop.DailyCosts(es.balance.RentCents, es.balance.WageCents)
	es.logger.Infof("Day %d settlement: %d cents due (rent + %d wages).", payload.Day, costs, es.shop.Staff)
	es.Withdraw(costs, "daily settlement", "", payload.Day)
}

// OnDayStarted clears the daily earnings counter for the new day.
func (es *EconomySystem) OnDayStarted(event events.ShopEvent) {
	payload, ok := event.Payload.(DayStartedPayload)
	if !ok {
		return
	}
	es.shop.ResetDay()
	es.shop.Day = payload.Day
}

// Hire puts one more printer on the payroll, paid up front.
func (es *EconomySystem) Hire(actor string, day int) error {
	if es.shop.Staff >= es.balance.MaxStaff {
		return fmt.Errorf("crew is already at the maximum of %d", es.balance.MaxStaff)
	}
	if es.shop.MoneyCents < es.balance.HireCostCents {
		return fmt.Errorf("hiring costs %d cents, only %d in the till", es.balance.HireCostCents, es.shop.MoneyCents)
	}
	es.Withdraw(es.balance.HireCostCents, "hired a printer", "", day)
	es.shop.Staff++
	es.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeEmployeeHired,
		ActorID:   actor,
		Payload:   HirePayload{Staff: es.shop.Staff, HireCostCents: es.balance.HireCostCents},
		GameDay:   day,
	})
	es.logger.Event("EMPLOYEE_HIRED", actor, fmt.Sprintf("crew is now %d", es.shop.Staff))
	return nil
}
