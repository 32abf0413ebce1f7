package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDay(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDay(raw)
	require.NoError(t, err)
	return d
}

func TestNightsBetween(t *testing.T) {
	tests := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"ten nights", mustDay(t, "2025-03-01"), mustDay(t, "2025-03-11"), 10},
		{"same day", mustDay(t, "2025-03-01"), mustDay(t, "2025-03-01"), 0},
		{"reversed", mustDay(t, "2025-03-05"), mustDay(t, "2025-03-01"), -4},
		{"partial day rounds up", mustDay(t, "2025-03-01"), mustDay(t, "2025-03-02").Add(3 * time.Hour), 2},
		{"under a day", mustDay(t, "2025-03-01"), mustDay(t, "2025-03-01").Add(time.Hour), 1},
		{"negative partial", mustDay(t, "2025-03-01"), mustDay(t, "2025-03-01").Add(-time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NightsBetween(tt.in, tt.out))
		})
	}
}

func TestParseDayRejectsTimestamps(t *testing.T) {
	_, err := ParseDay("2025-03-01T10:00:00Z")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w := Window{Start: mustDay(t, "2025-06-01"), End: mustDay(t, "2025-06-30")}
	require.True(t, w.Valid())
	assert.True(t, w.Contains(mustDay(t, "2025-06-01")))
	assert.True(t, w.Contains(mustDay(t, "2025-06-30").Add(23*time.Hour)))
	assert.False(t, w.Contains(mustDay(t, "2025-05-31")))
	assert.False(t, w.Contains(mustDay(t, "2025-07-01")))
	assert.Equal(t, "2025-06-01 - 2025-06-30", w.String())
}

func TestWindowInvalidWhenInverted(t *testing.T) {
	w := Window{Start: mustDay(t, "2025-06-02"), End: mustDay(t, "2025-06-01")}
	assert.False(t, w.Valid())
	assert.False(t, Window{}.Valid())
}

func TestRangeValidate(t *testing.T) {
	same := DateRange{CheckIn: mustDay(t, "2025-06-02"), CheckOut: mustDay(t, "2025-06-02")}
	require.ErrorIs(t, same.Validate(), ErrInvalidRange)
	assert.Equal(t, 0, same.Nights())

	require.ErrorIs(t, DateRange{CheckOut: mustDay(t, "2025-06-02")}.Validate(), ErrInvalidRange)

	week := DateRange{CheckIn: mustDay(t, "2025-06-02"), CheckOut: mustDay(t, "2025-06-09")}
	require.NoError(t, week.Validate())
	assert.Equal(t, 7, week.Nights())

	// Later calendar day, earlier instant.
	inverted := DateRange{
		CheckIn:  time.Date(2025, 7, 1, 23, 0, 0, 0, time.FixedZone("-05", -5*3600)),
		CheckOut: time.Date(2025, 7, 2, 1, 0, 0, 0, time.FixedZone("+02", 2*3600)),
	}
	require.ErrorIs(t, inverted.Validate(), ErrInvalidRange)
	assert.Negative(t, inverted.Nights())
}
