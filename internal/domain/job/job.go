// Package job defines the core domain entities for customer print orders.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package job

import (
	"math"

	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
)

// Status represents the lifecycle stage of a job.
type Status string

const (
	StatusOffered   Status = "OFFERED"   // On the terminal job board, not yet ours
	StatusAccepted  Status = "ACCEPTED"  // In the shop, screens can be burned
	StatusCompleted Status = "COMPLETED" // Delivered and paid
	StatusDeclined  Status = "DECLINED"  // Passed on, or cancelled after accepting
)

// Print is one location/color-count pair on the order sheet.
type Print struct {
	Location catalog.LocationID `json:"location"`
	Colors   int                `json:"colors"` // Separations, 1..MaxColors for the location
}

// Job represents a customer print order. The ID and PaymentCents are fixed
// at creation and never change afterwards.
type Job struct {
	ID           string               `json:"id"`
	Customer     string               `json:"customer"`
	Garment      catalog.GarmentColor `json:"garment"`
	Prints       []Print              `json:"prints"`
	Quantity     int                  `json:"quantity"` // Shirts ordered
	DueDay       int                  `json:"due_day"`
	PaymentCents int64                `json:"payment_cents"`

	Status        Status `json:"status"`
	Overdue       bool   `json:"overdue"`
	OfferedDay    int    `json:"offered_day"`
	PrintedShirts int    `json:"printed_shirts"` // Finished garments, 0..Quantity
}

// TotalColors is the number of screens the job needs: one per separation
// per location.
func (j *Job) TotalColors() int {
	total := 0
	for _, p := range j.Prints {
		total += p.Colors
	}
	return total
}

// HasLocation reports whether the order sheet includes the given location.
func (j *Job) HasLocation(loc catalog.LocationID) bool {
	for _, p := range j.Prints {
		if p.Location == loc {
			return true
		}
	}
	return false
}

// ColorsAt returns the separation count for a location, or 0 if the job
// does not print there.
func (j *Job) ColorsAt(loc catalog.LocationID) int {
	for _, p := range j.Prints {
		if p.Location == loc {
			return p.Colors
		}
	}
	return 0
}

// IsOpen reports whether the job still accepts shop work.
func (j *Job) IsOpen() bool {
	return j.Status == StatusAccepted
}

// Pricing knobs. BasePriceCents is what one single-color full-front shirt
// bills at; every extra separation adds colorStep of the location price.
const (
	colorStep      = 0.40
	underbaseBonus = 0.15
)

// Price computes the payment for an order: quantity x base price, scaled by
// the per-location multiplier and the color count of every print, rounded to
// whole cents. Deterministic; monotonically non-decreasing in quantity and in
// any print's color count.
func Price(basePriceCents int64, garment catalog.GarmentColor, prints []Print, quantity int) int64 {
	perShirt := 0.0
	for _, p := range prints {
		def := catalog.Locations[p.Location]
		colorFactor := 1.0 + colorStep*float64(p.Colors-1)
		perShirt += float64(basePriceCents) * def.Multiplier * colorFactor
	}
	if catalog.Garments[garment].NeedsUnderbase {
		perShirt *= 1.0 + underbaseBonus
	}
	return int64(math.Round(perShirt * float64(quantity)))
}

// crewScreenLimit maps staffing level to the screen count a crew can keep
// registered on press for a single job before the schedule falls apart.
var crewScreenLimit = map[int]int{
	1: 2,
	2: 4,
	3: 6,
	4: 9,
	5: 12,
}

const maxCrew = 5

// screenLimitFor returns the limit for a staff count, clamping outside the table.
func screenLimitFor(staff int) int {
	if staff < 1 {
		staff = 1
	}
	if staff > maxCrew {
		staff = maxCrew
	}
	return crewScreenLimit[staff]
}

// TooComplex reports whether the order's screen count exceeds what the
// current crew can run.
func (j *Job) TooComplex(staff int) bool {
	return j.TotalColors() > screenLimitFor(staff)
}

// RecommendedStaff returns the smallest crew size that could run this job,
// or maxCrew if no crew size fits.
func (j *Job) RecommendedStaff() int {
	for staff := 1; staff <= maxCrew; staff++ {
		if j.TotalColors() <= screenLimitFor(staff) {
			return staff
		}
	}
	return maxCrew
}

// MaxQuantityFor bounds the shirt count the generator may put on an order
// for a given staffing level.
func MaxQuantityFor(staff int, shirtsPerStaff int) int {
	if staff < 1 {
		staff = 1
	}
	return staff * shirtsPerStaff
}
