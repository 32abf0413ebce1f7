package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/money"
	"stayquote/internal/infra/storage/memory"
)

const sample = `
rates:
  private:
    - min_nights: 8
      nightly_rate: "315"
    - min_nights: 1
      nightly_rate: "320.50"
discounts:
  - id: summer
    name: Summer
    percentage: "10"
    start: "2025-06-01"
    end: "2025-08-31"
  - id: staff
    role_based: true
    active: false
    percentage: "20"
    start: "2025-01-01"
    end: "2025-12-31"
`

func TestLoadParsesCatalog(t *testing.T) {
	cat, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, cat.Tiers, 2)
	assert.Equal(t, 1, cat.Tiers[0].MinDurationNights)
	assert.Equal(t, "320.5", cat.Tiers[0].NightlyRate.String())
	assert.Equal(t, "private", cat.Tiers[1].RoomCategory)
	assert.Equal(t, []string{"private"}, cat.Categories())

	require.Len(t, cat.Discounts, 2)
	assert.Equal(t, "summer", cat.Discounts[0].ID)
	assert.True(t, cat.Discounts[0].Active, "active defaults to true")
	assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), cat.Discounts[0].EndDate)
	assert.False(t, cat.Discounts[1].Active)
	assert.True(t, cat.Discounts[1].IsRoleBased)
}

func TestLoadEmptyDocument(t *testing.T) {
	cat, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cat.Tiers)
	assert.Empty(t, cat.Discounts)
}

func TestLoadRejectsInvalidEntries(t *testing.T) {
	tests := map[string]string{
		"bad rate":       "rates:\n  a:\n    - min_nights: 1\n      nightly_rate: abc\n",
		"negative rate":  "rates:\n  a:\n    - min_nights: 1\n      nightly_rate: \"-1\"\n",
		"duplicate tier": "rates:\n  a:\n    - min_nights: 1\n      nightly_rate: \"1\"\n    - min_nights: 1\n      nightly_rate: \"2\"\n",
		"bad date":       "discounts:\n  - percentage: \"5\"\n    start: 2025-13-01\n    end: 2025-12-31\n",
		"duplicate id":   "discounts:\n  - id: x\n    percentage: \"5\"\n    start: 2025-01-01\n    end: 2025-12-31\n  - id: x\n    percentage: \"5\"\n    start: 2025-01-01\n    end: 2025-12-31\n",
		"not yaml":       "rates: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadReportsMalformedAmounts(t *testing.T) {
	_, err := Load(strings.NewReader("rates:\n  a:\n    - min_nights: 1\n      nightly_rate: \"12,50\"\n"))
	require.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = Load(strings.NewReader("discounts:\n  - percentage: ten\n    start: 2025-01-01\n    end: 2025-12-31\n"))
	require.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestSeedIntoMemoryStoresIsRepeatable(t *testing.T) {
	cat, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	ctx := context.Background()
	rates := memory.NewRateTable()
	discounts := memory.NewDiscountRegistry()

	res, err := cat.Seed(ctx, rates, discounts)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Tiers: 2, Discounts: 2}, res)

	res, err = cat.Seed(ctx, rates, discounts)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Tiers: 2, Skipped: 2}, res)

	tiers, err := rates.Tiers(ctx, "private")
	require.NoError(t, err)
	assert.Len(t, tiers, 2)

	rules, err := discounts.Rules(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "summer", rules[0].ID)
	assert.True(t, rules[0].CreatedAt.Before(rules[1].CreatedAt))
}

type failingTiers struct{}

func (failingTiers) Upsert(context.Context, domainpricing.RateTier) error { return errors.New("down") }

func TestSeedStopsOnWriterFailure(t *testing.T) {
	cat, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	res, err := cat.Seed(context.Background(), failingTiers{}, memory.NewDiscountRegistry())
	require.ErrorContains(t, err, "down")
	assert.Zero(t, res.Tiers)
}
