package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
)

// DiscountRegistry stores discount rules in insertion order.
type DiscountRegistry struct {
	mu    sync.RWMutex
	rules []domainpricing.DiscountRule
	now   func() time.Time
}

func NewDiscountRegistry() *DiscountRegistry {
	return &DiscountRegistry{now: time.Now}
}

// Add appends a rule, filling ID and CreatedAt when absent.
func (r *DiscountRegistry) Add(rule domainpricing.DiscountRule) domainpricing.DiscountRule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(rule)
}

// Insert stores rule unless one with the same ID exists.
func (r *DiscountRegistry) Insert(ctx context.Context, rule domainpricing.DiscountRule) (domainpricing.DiscountRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rules {
		if rule.ID != "" && existing.ID == rule.ID {
			return domainpricing.DiscountRule{}, fmt.Errorf("%w: %s", policies.ErrDiscountExists, rule.ID)
		}
	}
	return r.appendLocked(rule), nil
}

func (r *DiscountRegistry) appendLocked(rule domainpricing.DiscountRule) domainpricing.DiscountRule {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = r.now().UTC()
	}
	r.rules = append(r.rules, rule)
	return rule
}

// Rules returns every stored rule in insertion order; filtering by today is
// left to the engine.
func (r *DiscountRegistry) Rules(ctx context.Context, today time.Time) ([]domainpricing.DiscountRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domainpricing.DiscountRule(nil), r.rules...), nil
}

var _ policies.DiscountRegistry = (*DiscountRegistry)(nil)
