package engine

import (
	"testing"

	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

func TestLedgerClampsAtZero(t *testing.T) {
	// Setup: a shop with almost nothing in the till
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	bal := config.DefaultBalance()
	sh := shop.NewShop("SHOP_TEST", "Test Prints", 1_000, 1)
	es := NewEconomySystem(el, log, bal, sh)

	// Act: a charge bigger than the balance
	es.Withdraw(5_000, "daily settlement", "", 1)

	// Assert: clamped, bankrupt, exactly one transition
	if sh.MoneyCents != 0 {
		t.Errorf("Expected balance clamped at 0, got %d", sh.MoneyCents)
	}
	if !sh.Bankrupt {
		t.Errorf("Expected shop to be bankrupt")
	}

	es.Withdraw(5_000, "daily settlement", "", 2)
	if got := len(el.GetByType(events.EventTypeBankruptcy)); got != 1 {
		t.Errorf("Expected exactly 1 BANKRUPTCY event, got %d", got)
	}
}

func TestExactDebitStaysSolvent(t *testing.T) {
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	sh := shop.NewShop("SHOP_TEST", "Test Prints", 5_000, 1)
	es := NewEconomySystem(el, log, config.DefaultBalance(), sh)

	// Act: a charge that lands exactly on zero
	es.Withdraw(5_000, "rent", "", 1)

	// Assert: broke but not bankrupt
	if sh.MoneyCents != 0 {
		t.Errorf("Expected balance 0, got %d", sh.MoneyCents)
	}
	if sh.Bankrupt {
		t.Errorf("Expected shop to stay solvent on an exact debit")
	}
	if got := len(el.GetByType(events.EventTypeBankruptcy)); got != 0 {
		t.Errorf("Expected no BANKRUPTCY event, got %d", got)
	}
}

func TestDaySettlementChargesRentAndWages(t *testing.T) {
	// Setup
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	bal := config.DefaultBalance()
	sh := shop.NewShop("SHOP_TEST", "Test Prints", bal.StartingMoneyCents, 3)
	es := NewEconomySystem(el, log, bal, sh)

	want := sh.MoneyCents - (bal.RentCents + 3*bal.WageCents)

	// Act
	es.OnDayEnded(events.ShopEvent{
		Type:    events.EventTypeDayEnded,
		Payload: DayEndedPayload{Day: 1},
		GameDay: 1,
	})

	// Assert
	if sh.MoneyCents != want {
		t.Errorf("Expected %d cents after settlement, got %d", want, sh.MoneyCents)
	}
	if got := len(el.GetByType(events.EventTypeLedgerWithdraw)); got != 1 {
		t.Errorf("Expected 1 LEDGER_WITHDRAW event, got %d", got)
	}
}

func TestJobPaymentDepositsFixedAmount(t *testing.T) {
	// Setup
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	sh := shop.NewShop("SHOP_TEST", "Test Prints", 10_000, 1)
	es := NewEconomySystem(el, log, config.DefaultBalance(), sh)

	// Act
	es.OnJobCompleted(events.ShopEvent{
		Type:    events.EventTypeJobCompleted,
		Payload: JobClosedPayload{JobID: "JOB_1", Customer: "Split Shift Coffee", PaymentCents: 4_200},
		GameDay: 1,
	})

	// Assert
	if sh.MoneyCents != 14_200 {
		t.Errorf("Expected 14200 cents, got %d", sh.MoneyCents)
	}
	if sh.DailyEarningsCents != 4_200 {
		t.Errorf("Expected daily earnings 4200, got %d", sh.DailyEarningsCents)
	}
}

func TestHireRules(t *testing.T) {
	// Setup
	el := events.NewEventLog(nil)
	log := logger.NewLogger()
	bal := config.DefaultBalance()
	sh := shop.NewShop("SHOP_TEST", "Test Prints", bal.HireCostCents-1, 1)
	es := NewEconomySystem(el, log, bal, sh)

	// Act + Assert: cannot hire without the cash up front
	if err := es.Hire("P1", 1); err == nil {
		t.Fatalf("Expected hire to fail with insufficient funds")
	}

	sh.Deposit(bal.HireCostCents)
	if err := es.Hire("P1", 1); err != nil {
		t.Fatalf("Hire failed: %v", err)
	}
	if sh.Staff != 2 {
		t.Errorf("Expected crew of 2, got %d", sh.Staff)
	}

	// Crew cap
	sh.Staff = bal.MaxStaff
	sh.Deposit(bal.HireCostCents * 2)
	if err := es.Hire("P1", 1); err == nil {
		t.Errorf("Expected hire beyond MaxStaff to fail")
	}
}
