package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

// Catalog is the seed content for rate tables and discount rules.
type Catalog struct {
	Tiers     []domainpricing.RateTier
	Discounts []domainpricing.DiscountRule
}

// catalogFile mirrors the YAML document.
type catalogFile struct {
	Rates     map[string][]tierFile `yaml:"rates"`
	Discounts []discountFile        `yaml:"discounts"`
}

type tierFile struct {
	MinNights   int    `yaml:"min_nights"`
	NightlyRate string `yaml:"nightly_rate"`
}

type discountFile struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Active     *bool  `yaml:"active"`
	RoleBased  bool   `yaml:"role_based"`
	Percentage string `yaml:"percentage"`
	Start      string `yaml:"start"`
	End        string `yaml:"end"`
}

// LoadFile reads a catalog from the YAML file at path.
func LoadFile(path string) (Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return Load(file)
}

// Load decodes a catalog document. Tiers come out grouped by category and
// ordered by minimum duration; discounts keep document order, which becomes
// registry creation order.
func Load(r io.Reader) (Catalog, error) {
	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	var out Catalog
	for category, entries := range doc.Rates {
		category = strings.TrimSpace(category)
		if category == "" {
			return Catalog{}, fmt.Errorf("rate category required")
		}
		seen := make(map[int]struct{}, len(entries))
		for _, entry := range entries {
			if entry.MinNights < 0 {
				return Catalog{}, fmt.Errorf("category %s: min_nights must not be negative", category)
			}
			if _, dup := seen[entry.MinNights]; dup {
				return Catalog{}, fmt.Errorf("category %s: duplicate tier for %d nights", category, entry.MinNights)
			}
			seen[entry.MinNights] = struct{}{}
			rate, err := money.Parse(entry.NightlyRate)
			if err != nil {
				return Catalog{}, fmt.Errorf("category %s nightly_rate: %w", category, err)
			}
			if rate.IsNegative() {
				return Catalog{}, fmt.Errorf("category %s: nightly_rate must not be negative", category)
			}
			out.Tiers = append(out.Tiers, domainpricing.RateTier{
				RoomCategory:      category,
				MinDurationNights: entry.MinNights,
				NightlyRate:       rate,
			})
		}
	}
	domainpricing.SortTiers(out.Tiers)

	ids := make(map[string]struct{})
	for i, entry := range doc.Discounts {
		rule, err := entry.toDomain()
		if err != nil {
			return Catalog{}, fmt.Errorf("discount #%d: %w", i+1, err)
		}
		if rule.ID != "" {
			if _, dup := ids[rule.ID]; dup {
				return Catalog{}, fmt.Errorf("discount #%d: duplicate id %s", i+1, rule.ID)
			}
			ids[rule.ID] = struct{}{}
		}
		out.Discounts = append(out.Discounts, rule)
	}
	return out, nil
}

func (d discountFile) toDomain() (domainpricing.DiscountRule, error) {
	pct, err := money.Parse(d.Percentage)
	if err != nil {
		return domainpricing.DiscountRule{}, fmt.Errorf("percentage: %w", err)
	}
	start, err := daterange.ParseDay(d.Start)
	if err != nil {
		return domainpricing.DiscountRule{}, fmt.Errorf("start: %w", err)
	}
	end, err := daterange.ParseDay(d.End)
	if err != nil {
		return domainpricing.DiscountRule{}, fmt.Errorf("end: %w", err)
	}
	active := true
	if d.Active != nil {
		active = *d.Active
	}
	return domainpricing.DiscountRule{
		ID:          strings.TrimSpace(d.ID),
		Name:        strings.TrimSpace(d.Name),
		Active:      active,
		IsRoleBased: d.RoleBased,
		Percentage:  pct,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// Categories lists the room categories present in the catalog.
func (c Catalog) Categories() []string {
	set := make(map[string]struct{})
	for _, t := range c.Tiers {
		set[t.RoomCategory] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for category := range set {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// TierWriter stores one rate tier, replacing any tier with the same key.
type TierWriter interface {
	Upsert(ctx context.Context, tier domainpricing.RateTier) error
}

// DiscountWriter stores one discount rule.
type DiscountWriter interface {
	Insert(ctx context.Context, rule domainpricing.DiscountRule) (domainpricing.DiscountRule, error)
}

// SeedResult counts what Seed wrote.
type SeedResult struct {
	Tiers     int
	Discounts int
	Skipped   int
}

// Seed writes the catalog into the given stores. Discounts whose ID already
// exists are skipped so a restart does not duplicate rules.
func (c Catalog) Seed(ctx context.Context, tiers TierWriter, discounts DiscountWriter) (SeedResult, error) {
	var res SeedResult
	// Creation order drives first-match selection and stores keep
	// millisecond precision, so space the timestamps apart.
	base := time.Now().UTC().Truncate(time.Millisecond)
	for _, tier := range c.Tiers {
		if err := tiers.Upsert(ctx, tier); err != nil {
			return res, fmt.Errorf("seed tier %s/%d: %w", tier.RoomCategory, tier.MinDurationNights, err)
		}
		res.Tiers++
	}
	for i, rule := range c.Discounts {
		if rule.CreatedAt.IsZero() {
			rule.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		}
		if _, err := discounts.Insert(ctx, rule); err != nil {
			if errors.Is(err, policies.ErrDiscountExists) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed discount %q: %w", rule.Name, err)
		}
		res.Discounts++
	}
	return res, nil
}
