// Package catalog defines the static print-shop data: print locations, ink and
// garment registries, and the customer pool used by the job generator.
// This package is PURE and must NOT import any infrastructure packages.
package catalog

// LocationID identifies a printable area on a shirt.
type LocationID string

const (
	LocationFront       LocationID = "FRONT"
	LocationBack        LocationID = "BACK"
	LocationPocket      LocationID = "POCKET"
	LocationNape        LocationID = "NAPE"
	LocationLeftSleeve  LocationID = "LEFT_SLEEVE"
	LocationRightSleeve LocationID = "RIGHT_SLEEVE"
)

// LocationDefinition provides metadata about a print location.
type LocationDefinition struct {
	Name       string
	Multiplier float64 // Price factor relative to a full front print
	MaxColors  int     // Physical limit of the area (sleeves can't hold 6 separations)
}

// Locations contains all printable locations and their properties.
var Locations = map[LocationID]LocationDefinition{
	LocationFront:       {Name: "Full Front", Multiplier: 1.0, MaxColors: 6},
	LocationBack:        {Name: "Full Back", Multiplier: 1.0, MaxColors: 6},
	LocationPocket:      {Name: "Pocket Hit", Multiplier: 0.6, MaxColors: 3},
	LocationNape:        {Name: "Nape Tag", Multiplier: 0.5, MaxColors: 2},
	LocationLeftSleeve:  {Name: "Left Sleeve", Multiplier: 0.75, MaxColors: 3},
	LocationRightSleeve: {Name: "Right Sleeve", Multiplier: 0.75, MaxColors: 3},
}

// conflicts lists location pairs that cannot appear on the same job:
// a pocket hit sits inside the full-front area, and the nape tag inside
// the full-back area. The table is symmetric by construction.
var conflicts = map[LocationID][]LocationID{
	LocationFront:  {LocationPocket},
	LocationPocket: {LocationFront},
	LocationBack:   {LocationNape},
	LocationNape:   {LocationBack},
}

// Conflicts reports whether two locations cannot be printed on the same job.
func Conflicts(a, b LocationID) bool {
	for _, c := range conflicts[a] {
		if c == b {
			return true
		}
	}
	return false
}

// ConflictsWithAny reports whether loc conflicts with any already-picked location.
func ConflictsWithAny(loc LocationID, picked []LocationID) bool {
	for _, p := range picked {
		if Conflicts(loc, p) {
			return true
		}
	}
	return false
}

// AllLocations returns the location IDs in a stable order.
func AllLocations() []LocationID {
	return []LocationID{
		LocationFront,
		LocationBack,
		LocationPocket,
		LocationNape,
		LocationLeftSleeve,
		LocationRightSleeve,
	}
}

// GarmentColor identifies the blank shirt color for a job.
type GarmentColor string

const (
	GarmentWhite    GarmentColor = "WHITE"
	GarmentBlack    GarmentColor = "BLACK"
	GarmentNavy     GarmentColor = "NAVY"
	GarmentRed      GarmentColor = "RED"
	GarmentHeather  GarmentColor = "HEATHER"
	GarmentSafetyGn GarmentColor = "SAFETY_GREEN"
)

// GarmentDefinition provides metadata about a blank shirt color.
type GarmentDefinition struct {
	Name string
	// Dark garments need a white underbase flash, which makes every
	// pull slower and slightly more expensive.
	NeedsUnderbase bool
}

// Garments contains all stocked blank colors.
var Garments = map[GarmentColor]GarmentDefinition{
	GarmentWhite:    {Name: "White"},
	GarmentBlack:    {Name: "Black", NeedsUnderbase: true},
	GarmentNavy:     {Name: "Navy", NeedsUnderbase: true},
	GarmentRed:      {Name: "Red", NeedsUnderbase: true},
	GarmentHeather:  {Name: "Heather Grey"},
	GarmentSafetyGn: {Name: "Safety Green"},
}

// AllGarments returns the garment colors in a stable order.
func AllGarments() []GarmentColor {
	return []GarmentColor{
		GarmentWhite,
		GarmentBlack,
		GarmentNavy,
		GarmentRed,
		GarmentHeather,
		GarmentSafetyGn,
	}
}

// CustomerPool is the name pool the job generator shuffles each day.
var CustomerPool = []string{
	"Riverside Little League",
	"Bluegill Brewing Co.",
	"Tessellate Records",
	"Magnolia Street Diner",
	"Pit Stop Auto Parts",
	"First Ward Run Club",
	"Hollow Point Climbing Gym",
	"Casa Reyes Taqueria",
	"North Pier Surf Shop",
	"Dust & Vinyl",
	"Kettle Ridge Farms",
	"The Velvet Antler",
	"Sunbeam Daycare",
	"Ironclad Powerlifting",
	"Fog City Skate Collective",
	"Pinewood Lodge No. 47",
	"Harbor Lights Choir",
	"Two Stroke Moto Club",
	"Marigold Yoga",
	"Split Shift Coffee",
}
