package dto

import (
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

// PriceQuote mirrors domain PriceQuote with money as fixed two-place strings.
type PriceQuote struct {
	Currency            string  `json:"currency"`
	Nights              int     `json:"nights"`
	DailyRate           string  `json:"daily_rate"`
	BasePrice           string  `json:"base_price"`
	DiscountName        *string `json:"discount_name"`
	DiscountPercentage  string  `json:"discount_percentage"`
	DiscountAmount      string  `json:"discount_amount"`
	IsRoleBasedDiscount bool    `json:"is_role_based_discount"`
	PriceAfterDiscount  string  `json:"price_after_discount"`
	PaymentFee          string  `json:"payment_fee"`
	SubtotalBeforeTax   string  `json:"subtotal_before_tax"`
	TaxAmount           string  `json:"tax_amount"`
	TotalAmount         string  `json:"total_amount"`
	DurationTierApplied int     `json:"duration_tier_applied"`
}

type IssuedQuote struct {
	QuoteID  string     `json:"quote_id"`
	IssuedAt string     `json:"issued_at"`
	Quote    PriceQuote `json:"quote"`
}

type RateTier struct {
	MinDurationNights int    `json:"min_duration_nights"`
	NightlyRate       string `json:"nightly_rate"`
}

type RateTable struct {
	RoomCategory string     `json:"room_category"`
	Currency     string     `json:"currency"`
	Tiers        []RateTier `json:"tiers"`
}

type Discount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsRoleBased bool   `json:"is_role_based"`
	Percentage  string `json:"percentage"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type DiscountCollection struct {
	Date  string     `json:"date"`
	Items []Discount `json:"items"`
}

func MapPriceQuote(q domainpricing.PriceQuote, currency string) PriceQuote {
	snap := domainpricing.Snapshot(q)
	return PriceQuote{
		Currency:            currency,
		Nights:              snap.Nights,
		DailyRate:           snap.DailyRate,
		BasePrice:           snap.BasePrice,
		DiscountName:        snap.DiscountName,
		DiscountPercentage:  snap.DiscountPercentage,
		DiscountAmount:      snap.DiscountAmount,
		IsRoleBasedDiscount: snap.IsRoleBasedDiscount,
		PriceAfterDiscount:  snap.PriceAfterDiscount,
		PaymentFee:          snap.PaymentFee,
		SubtotalBeforeTax:   snap.SubtotalBeforeTax,
		TaxAmount:           snap.TaxAmount,
		TotalAmount:         snap.TotalAmount,
		DurationTierApplied: snap.DurationTierApplied,
	}
}

func MapRateTable(category, currency string, tiers []domainpricing.RateTier) RateTable {
	out := RateTable{RoomCategory: category, Currency: currency, Tiers: make([]RateTier, 0, len(tiers))}
	for _, t := range tiers {
		out.Tiers = append(out.Tiers, RateTier{
			MinDurationNights: t.MinDurationNights,
			NightlyRate:       money.Format(t.NightlyRate),
		})
	}
	return out
}

func MapDiscount(r domainpricing.DiscountRule) Discount {
	return Discount{
		ID:          r.ID,
		Name:        r.DisplayName(),
		IsRoleBased: r.IsRoleBased,
		Percentage:  r.Percentage.String(),
		StartDate:   daterange.FormatDay(r.StartDate),
		EndDate:     daterange.FormatDay(r.EndDate),
	}
}
