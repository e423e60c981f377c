package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID    string
	Money int64
}

func TestChanged(t *testing.T) {
	c := NewSnapshotCache()

	assert.True(t, c.Changed(ShopKey("SHOP_1"), row{"SHOP_1", 100}))
	assert.False(t, c.Changed(ShopKey("SHOP_1"), row{"SHOP_1", 100}))
	assert.True(t, c.Changed(ShopKey("SHOP_1"), row{"SHOP_1", 200}))
	assert.False(t, c.Changed(ShopKey("SHOP_1"), row{"SHOP_1", 200}))
}

func TestKeysAreIndependent(t *testing.T) {
	c := NewSnapshotCache()

	assert.True(t, c.Changed(JobKey("SHOP_1", "J1"), row{"J1", 1}))
	assert.True(t, c.Changed(JobKey("SHOP_1", "J2"), row{"J1", 1}))
	assert.False(t, c.Changed(JobKey("SHOP_1", "J1"), row{"J1", 1}))
}

func TestInvalidate(t *testing.T) {
	c := NewSnapshotCache()

	c.Changed(ScreensKey("SHOP_1"), []row{{"S1", 0}})
	c.Invalidate(ScreensKey("SHOP_1"))

	assert.True(t, c.Changed(ScreensKey("SHOP_1"), []row{{"S1", 0}}))
}
