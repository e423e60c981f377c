package config

// Balance holds gameplay balance configuration.
type Balance struct {
	// Economy
	StartingMoneyCents int64 `json:"starting_money_cents"`
	RentCents          int64 `json:"rent_cents"` // Fixed cost per day
	WageCents          int64 `json:"wage_cents"` // Per employee per day
	HireCostCents      int64 `json:"hire_cost_cents"`

	// Job generation
	BasePriceCents int64 `json:"base_price_cents"` // One single-color full-front shirt
	MaxJobsPerDay  int   `json:"max_jobs_per_day"` // Generator rolls 1..N
	MinQuantity    int   `json:"min_quantity"`
	ShirtsPerStaff int   `json:"shirts_per_staff"` // Quantity cap = staff * this
	MaxLocations   int   `json:"max_locations"`    // Locations per order
	DueDayMin      int   `json:"due_day_min"`      // Offset from the offer day
	DueDayMax      int   `json:"due_day_max"`

	// Staffing
	StartingStaff int `json:"starting_staff"`
	MaxStaff      int `json:"max_staff"`

	// Clock
	DayLengthSec float64 `json:"day_length_sec"` // Simulated seconds per work day

	// Press
	PressBusyTicks int `json:"press_busy_ticks"` // Re-entry guard after rotate/print
}

// DefaultBalance returns the default balance configuration.
func DefaultBalance() Balance {
	return Balance{
		StartingMoneyCents: 50_000, // $500 in the till
		RentCents:          12_000,
		WageCents:          9_000,
		HireCostCents:      15_000,

		BasePriceCents: 800,
		MaxJobsPerDay:  3,
		MinQuantity:    6,
		ShirtsPerStaff: 24,
		MaxLocations:   3,
		DueDayMin:      1,
		DueDayMax:      3,

		StartingStaff: 1,
		MaxStaff:      5,

		DayLengthSec: 480, // 8 minutes of floor time at 1x

		PressBusyTicks: 2,
	}
}

// CasualBalance returns easier balance for casual difficulty.
func CasualBalance() Balance {
	cfg := DefaultBalance()
	cfg.StartingMoneyCents = 100_000
	cfg.RentCents = 8_000
	cfg.MaxJobsPerDay = 2
	cfg.DueDayMin = 2
	cfg.DueDayMax = 4
	return cfg
}

// HardBalance returns harder balance for experienced players.
func HardBalance() Balance {
	cfg := DefaultBalance()
	cfg.StartingMoneyCents = 25_000
	cfg.RentCents = 16_000
	cfg.WageCents = 11_000
	cfg.MaxJobsPerDay = 4
	cfg.DueDayMax = 2
	cfg.DayLengthSec = 360
	return cfg
}
