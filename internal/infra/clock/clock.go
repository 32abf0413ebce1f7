package clock

import (
	"time"

	"stayquote/internal/app/policies"
	"stayquote/internal/domain/shared/daterange"
)

// Zoned reports the current calendar day as seen in a fixed business time zone.
type Zoned struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) Zoned {
	if loc == nil {
		loc = time.UTC
	}
	return Zoned{loc: loc, now: time.Now}
}

// Fixed returns a clock frozen at t, for tests and replays.
func Fixed(t time.Time, loc *time.Location) Zoned {
	z := New(loc)
	z.now = func() time.Time { return t }
	return z
}

func (z Zoned) Now() time.Time {
	return z.now().In(z.loc)
}

// Today is the business-zone date at UTC midnight, the form used for
// discount windows.
func (z Zoned) Today() time.Time {
	return daterange.Day(z.Now())
}

var _ policies.Clock = Zoned{}
