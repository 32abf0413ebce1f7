package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayFollowsBusinessZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on June 14th is already June 15th in Tokyo.
	instant := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), Fixed(instant, tokyo).Today())
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), Fixed(instant, nil).Today())
}

func TestNowUsesLocation(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)
	c := New(lisbon)
	assert.Equal(t, lisbon, c.Now().Location())
}
