package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO-8601 calendar date layout used on the wire.
const Layout = "2006-01-02"

const day = 24 * time.Hour

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate  = errors.New("daterange: invalid calendar date")
)

// Day truncates t to midnight UTC of its calendar date in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(Layout)
}

// NightsBetween returns ceil((checkOut - checkIn) / 24h). Non-positive
// spans yield zero or a negative count.
func NightsBetween(checkIn, checkOut time.Time) int {
	span := checkOut.Sub(checkIn)
	nights := int(span / day)
	if span%day > 0 {
		nights++
	}
	return nights
}

// DateRange is the half-open stay interval [CheckIn, CheckOut) on real
// instants. Nights counts started 24h periods.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Validate requires both bounds set and CheckOut strictly after CheckIn.
func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return NightsBetween(dr.CheckIn, dr.CheckOut)
}

// Window is a closed interval of calendar days [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether both bounds are set and Start <= End.
func (w Window) Valid() bool {
	if w.Start.IsZero() || w.End.IsZero() {
		return false
	}
	return !Day(w.End).Before(Day(w.Start))
}

// Contains reports whether the calendar day of t falls inside the window,
// bounds included.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(w.Start)) && !d.After(Day(w.End))
}

func (w Window) String() string {
	return FormatDay(w.Start) + " - " + FormatDay(w.End)
}
