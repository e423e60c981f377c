// Package shop defines the shop ledger and staffing state.
// This package is PURE and must NOT import any infrastructure packages.
package shop

// Shop holds the single mutable ledger of the simulation: cash on hand,
// what came in today, and who is on the payroll. Money is stored in cents
// and is never negative; crossing zero sets Bankrupt once and for all.
type Shop struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	MoneyCents         int64 `json:"money_cents"`
	DailyEarningsCents int64 `json:"daily_earnings_cents"`
	Staff              int   `json:"staff"`
	Day                int   `json:"day"`
	Bankrupt           bool  `json:"bankrupt"`
}

// NewShop creates a fresh shop with starting cash and crew.
func NewShop(id, name string, startingCents int64, staff int) *Shop {
	if staff < 1 {
		staff = 1
	}
	return &Shop{
		ID:         id,
		Name:       name,
		MoneyCents: startingCents,
		Staff:      staff,
		Day:        1,
	}
}

// Deposit adds to the ledger and today's earnings. No-op for non-positive amounts.
func (s *Shop) Deposit(cents int64) {
	if cents <= 0 {
		return
	}
	s.MoneyCents += cents
	s.DailyEarningsCents += cents
}

// Withdraw subtracts from the ledger. If the balance would cross below zero
// it clamps to zero and returns true exactly once: the bankruptcy transition.
// Further withdrawals from a bankrupt shop return false.
func (s *Shop) Withdraw(cents int64) (wentBankrupt bool) {
	if cents <= 0 {
		return false
	}
	s.MoneyCents -= cents
	if s.MoneyCents >= 0 {
		return false
	}
	s.MoneyCents = 0
	if s.Bankrupt {
		return false
	}
	s.Bankrupt = true
	return true
}

// DailyCosts is the fixed overhead settled at day end: rent plus wages.
func (s *Shop) DailyCosts(rentCents, wageCents int64) int64 {
	return rentCents + wageCents*int64(s.Staff)
}

// ResetDay clears the daily earnings counter. Called after the settlement
// summary is dismissed.
func (s *Shop) ResetDay() {
	s.DailyEarningsCents = 0
}
