package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateTier activates NightlyRate once a stay reaches MinDurationNights.
type RateTier struct {
	RoomCategory      string
	MinDurationNights int
	NightlyRate       decimal.Decimal
}

// SelectTier returns the tier of category with the largest MinDurationNights
// not exceeding nights. Among tiers sharing that minimum the first one wins.
// found reports whether the category appears in tiers at all.
func SelectTier(tiers []RateTier, category string, nights int) (tier RateTier, ok bool, found bool) {
	for _, t := range tiers {
		if t.RoomCategory != category {
			continue
		}
		found = true
		if t.MinDurationNights > nights {
			continue
		}
		if !ok || t.MinDurationNights > tier.MinDurationNights {
			tier = t
			ok = true
		}
	}
	return tier, ok, found
}

// SortTiers orders tiers by category then MinDurationNights, keeping the
// relative order of equal entries.
func SortTiers(tiers []RateTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].RoomCategory != tiers[j].RoomCategory {
			return tiers[i].RoomCategory < tiers[j].RoomCategory
		}
		return tiers[i].MinDurationNights < tiers[j].MinDurationNights
	})
}
