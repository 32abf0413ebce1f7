package pricing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stayquote/internal/domain/shared/daterange"
)

var hundred = decimal.NewFromInt(100)

// DiscountRule is a percentage discount valid on the closed date window
// [StartDate, EndDate]. Rules are matched in slice order.
type DiscountRule struct {
	ID          string
	Name        string
	Active      bool
	IsRoleBased bool
	Percentage  decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
}

func (r DiscountRule) window() daterange.Window {
	return daterange.Window{Start: r.StartDate, End: r.EndDate}
}

// Wellformed reports whether the percentage lies in 0..100 and the window is
// not inverted.
func (r DiscountRule) Wellformed() bool {
	if r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred) {
		return false
	}
	return r.window().Valid()
}

// ApplicableOn reports whether the rule is active, well-formed and its window
// contains the calendar day of today.
func (r DiscountRule) ApplicableOn(today time.Time) bool {
	return r.Active && r.Wellformed() && r.window().Contains(today)
}

// DisplayName returns the rule name, or a synthesized label built from the
// date window when the rule has none.
func (r DiscountRule) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return "Special Discount (" + r.window().String() + ")"
}

// FirstApplicable returns the first rule of the requested kind applicable on
// today. Overlapping rules resolve to the earliest one in registry order.
func FirstApplicable(rules []DiscountRule, roleBased bool, today time.Time) (DiscountRule, bool) {
	for _, r := range rules {
		if r.IsRoleBased != roleBased {
			continue
		}
		if r.ApplicableOn(today) {
			return r, true
		}
	}
	return DiscountRule{}, false
}

// ActiveOn filters rules applicable on today, preserving order.
func ActiveOn(rules []DiscountRule, today time.Time) []DiscountRule {
	out := make([]DiscountRule, 0, len(rules))
	for _, r := range rules {
		if r.ApplicableOn(today) {
			out = append(out, r)
		}
	}
	return out
}
