package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestController_Slots(t *testing.T) {
	c := NewController(Config{MaxCreating: 2})

	// Acquire 2
	require.True(t, c.TryAcquireSlot())
	require.True(t, c.TryAcquireSlot())
	assert.Equal(t, int64(2), c.Creating())

	// Try 3rd
	assert.False(t, c.TryAcquireSlot())
	assert.Equal(t, int64(2), c.Creating())

	// Release 1
	c.ReleaseSlot()
	assert.Equal(t, int64(1), c.Creating())

	// Try 3rd again
	assert.True(t, c.TryAcquireSlot())
}

func TestController_UnlimitedSlots(t *testing.T) {
	c := NewController(Config{})

	for i := 0; i < 100; i++ {
		require.True(t, c.TryAcquireSlot())
	}
	assert.Equal(t, int64(100), c.Creating())

	c.ReleaseSlot()
	assert.Equal(t, int64(99), c.Creating())
}

func TestController_CreateRate(t *testing.T) {
	c := NewController(Config{
		CreateLimiter: rate.NewLimiter(rate.Every(time.Hour), 2),
	})

	// Burst of 2, then dry until the next token.
	assert.True(t, c.AllowCreate())
	assert.True(t, c.AllowCreate())
	assert.False(t, c.AllowCreate())
}

func TestController_NoRateLimiter(t *testing.T) {
	c := NewController(Config{})

	for i := 0; i < 10; i++ {
		assert.True(t, c.AllowCreate())
	}
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.True(t, c.TryAcquireSlot())
	assert.True(t, c.AllowCreate())
	assert.Equal(t, int64(0), c.Creating())
	c.ReleaseSlot()
}
