package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "pressworks.db", cfg.DBPath)
	assert.Equal(t, 500, cfg.TickMillis)
	assert.Equal(t, 1.0, cfg.TimeScale)
	assert.Equal(t, 500*time.Millisecond, cfg.TickRate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PRESSWORKS_ADDR", ":9090")
	t.Setenv("PRESSWORKS_TICK_MS", "250")
	t.Setenv("PRESSWORKS_DIFFICULTY", "hard")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 250, cfg.TickMillis)
	assert.Equal(t, HardBalance(), cfg.BalanceFor())
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	t.Setenv("PRESSWORKS_TICK_MS", "0")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("PRESSWORKS_TICK_MS", "500")
	t.Setenv("PRESSWORKS_TIME_SCALE", "-1")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestBalanceFor_UnknownFallsBackToDefault(t *testing.T) {
	cfg := Server{Difficulty: "nightmare"}
	assert.Equal(t, DefaultBalance(), cfg.BalanceFor())
}

func TestBalanceTables(t *testing.T) {
	def := DefaultBalance()
	casual := CasualBalance()
	hard := HardBalance()

	assert.Greater(t, casual.StartingMoneyCents, def.StartingMoneyCents)
	assert.Less(t, hard.StartingMoneyCents, def.StartingMoneyCents)
	assert.Greater(t, hard.RentCents, def.RentCents)
	assert.GreaterOrEqual(t, casual.DueDayMin, def.DueDayMin)

	for _, bal := range []Balance{def, casual, hard} {
		assert.Greater(t, bal.BasePriceCents, int64(0))
		assert.GreaterOrEqual(t, bal.DueDayMax, bal.DueDayMin)
		assert.GreaterOrEqual(t, bal.MaxStaff, bal.StartingStaff)
		assert.Greater(t, bal.DayLengthSec, 0.0)
	}
}
