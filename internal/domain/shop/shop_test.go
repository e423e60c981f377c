package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShop(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 50_000, 2)

	assert.Equal(t, int64(50_000), s.MoneyCents)
	assert.Equal(t, 2, s.Staff)
	assert.Equal(t, 1, s.Day)
	assert.False(t, s.Bankrupt)
}

func TestNewShop_ClampsStaff(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 50_000, 0)

	assert.Equal(t, 1, s.Staff)
}

func TestDeposit(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 1_000, 1)

	s.Deposit(500)
	s.Deposit(0)
	s.Deposit(-100)

	assert.Equal(t, int64(1_500), s.MoneyCents)
	assert.Equal(t, int64(500), s.DailyEarningsCents)
}

func TestWithdraw_ClampsAtZero(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 1_000, 1)

	wentBankrupt := s.Withdraw(3_000)

	assert.True(t, wentBankrupt)
	assert.Equal(t, int64(0), s.MoneyCents)
	assert.True(t, s.Bankrupt)
}

func TestWithdraw_BankruptcyFiresOnce(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 1_000, 1)

	assert.True(t, s.Withdraw(3_000))
	assert.False(t, s.Withdraw(3_000))
	assert.False(t, s.Withdraw(3_000))
}

func TestWithdraw_ExactZeroStaysSolvent(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 1_000, 1)

	wentBankrupt := s.Withdraw(1_000)

	assert.False(t, wentBankrupt)
	assert.Equal(t, int64(0), s.MoneyCents)
	assert.False(t, s.Bankrupt)
}

func TestDailyCosts(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 50_000, 3)

	assert.Equal(t, int64(12_000+3*9_000), s.DailyCosts(12_000, 9_000))
}

func TestResetDay(t *testing.T) {
	s := NewShop("SHOP_1", "Halftone & Co.", 1_000, 1)
	s.Deposit(2_000)

	s.ResetDay()

	assert.Equal(t, int64(0), s.DailyEarningsCents)
	assert.Equal(t, int64(3_000), s.MoneyCents)
}
