package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictsAreSymmetric(t *testing.T) {
	for _, a := range AllLocations() {
		for _, b := range AllLocations() {
			assert.Equal(t, Conflicts(a, b), Conflicts(b, a), "%s vs %s", a, b)
		}
	}
}

func TestKnownConflicts(t *testing.T) {
	assert.True(t, Conflicts(LocationFront, LocationPocket))
	assert.True(t, Conflicts(LocationBack, LocationNape))

	assert.False(t, Conflicts(LocationFront, LocationBack))
	assert.False(t, Conflicts(LocationLeftSleeve, LocationRightSleeve))
	assert.False(t, Conflicts(LocationPocket, LocationNape))
}

func TestConflictsWithAny(t *testing.T) {
	picked := []LocationID{LocationFront, LocationLeftSleeve}

	assert.True(t, ConflictsWithAny(LocationPocket, picked))
	assert.False(t, ConflictsWithAny(LocationBack, picked))
	assert.False(t, ConflictsWithAny(LocationNape, nil))
}

func TestEveryLocationIsDefined(t *testing.T) {
	for _, loc := range AllLocations() {
		def, ok := Locations[loc]
		assert.True(t, ok, "missing definition for %s", loc)
		assert.Greater(t, def.Multiplier, 0.0, "%s", loc)
		assert.GreaterOrEqual(t, def.MaxColors, 1, "%s", loc)
	}
}

func TestEveryGarmentIsDefined(t *testing.T) {
	for _, g := range AllGarments() {
		_, ok := Garments[g]
		assert.True(t, ok, "missing definition for %s", g)
	}
}

func TestDarkGarmentsNeedUnderbase(t *testing.T) {
	assert.False(t, Garments[GarmentWhite].NeedsUnderbase)
	assert.True(t, Garments[GarmentBlack].NeedsUnderbase)
	assert.True(t, Garments[GarmentNavy].NeedsUnderbase)
}
