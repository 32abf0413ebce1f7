package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecimal128Conversion(t *testing.T) {
	for _, raw := range []string{"315", "33.335", "0.038", "0"} {
		d := decimal.RequireFromString(raw)
		enc, err := toDecimal128(d)
		require.NoError(t, err)
		back, err := fromDecimal128(enc)
		require.NoError(t, err)
		assert.True(t, d.Equal(back), raw)
	}
}

func TestDiscountDocumentToDomain(t *testing.T) {
	pct, err := primitive.ParseDecimal128("12.5")
	require.NoError(t, err)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	doc := discountDocument{ID: "d1", Name: "Summer", Active: true, Percentage: pct, StartDate: start, EndDate: start.AddDate(0, 0, 29)}

	rule, err := doc.toDomain()
	require.NoError(t, err)
	assert.Equal(t, "12.5", rule.Percentage.String())
	assert.True(t, rule.ApplicableOn(start.AddDate(0, 0, 29)))
}

func TestRateTierDocumentToDomain(t *testing.T) {
	rate, err := primitive.ParseDecimal128("310.00")
	require.NoError(t, err)
	tier, err := rateTierDocument{RoomCategory: "private", MinDurationNights: 15, NightlyRate: rate}.toDomain()
	require.NoError(t, err)
	assert.True(t, tier.NightlyRate.Equal(decimal.NewFromInt(310)))
	assert.Equal(t, 15, tier.MinDurationNights)
}
