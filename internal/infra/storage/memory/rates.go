package memory

import (
	"context"
	"strings"
	"sync"

	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
)

// RateTable keeps duration tiers per room category.
type RateTable struct {
	mu    sync.RWMutex
	tiers map[string][]domainpricing.RateTier
}

func NewRateTable() *RateTable {
	return &RateTable{tiers: make(map[string][]domainpricing.RateTier)}
}

// Put replaces every tier of category.
func (r *RateTable) Put(category string, tiers []domainpricing.RateTier) {
	category = strings.TrimSpace(category)
	copied := make([]domainpricing.RateTier, 0, len(tiers))
	for _, t := range tiers {
		t.RoomCategory = category
		copied = append(copied, t)
	}
	domainpricing.SortTiers(copied)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[category] = copied
}

// Upsert stores one tier keyed by category and minimum duration.
func (r *RateTable) Upsert(ctx context.Context, tier domainpricing.RateTier) error {
	tier.RoomCategory = strings.TrimSpace(tier.RoomCategory)
	r.mu.Lock()
	defer r.mu.Unlock()
	tiers := r.tiers[tier.RoomCategory]
	for i := range tiers {
		if tiers[i].MinDurationNights == tier.MinDurationNights {
			tiers[i] = tier
			return nil
		}
	}
	tiers = append(tiers, tier)
	domainpricing.SortTiers(tiers)
	r.tiers[tier.RoomCategory] = tiers
	return nil
}

// Tiers returns a copy of the category's tiers or policies.ErrCategoryNotFound.
func (r *RateTable) Tiers(ctx context.Context, category string) ([]domainpricing.RateTier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tiers, ok := r.tiers[category]
	if !ok {
		return nil, policies.ErrCategoryNotFound
	}
	return append([]domainpricing.RateTier(nil), tiers...), nil
}

// Categories lists the known room categories.
func (r *RateTable) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tiers))
	for c := range r.tiers {
		out = append(out, c)
	}
	return out
}

var _ policies.RateTableProvider = (*RateTable)(nil)
