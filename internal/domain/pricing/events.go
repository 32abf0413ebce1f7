package pricing

import (
	"time"

	"github.com/google/uuid"

	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/events"
	"stayquote/internal/domain/shared/money"
)

const EventQuoteIssued = "quote.issued"

var quoteEventSpace = uuid.MustParse("5f8a3c1e-7d2b-4e69-9a0f-3b6c1d2e4f70")

// QuoteEventID is the stable ID of the quote.issued event for quoteID.
func QuoteEventID(quoteID string) string {
	return uuid.NewSHA1(quoteEventSpace, []byte(EventQuoteIssued+"/"+quoteID)).String()
}

// QuoteIssued is emitted once a quote is handed to the booking flow so that
// invoicing can reproduce the exact breakdown the guest saw.
type QuoteIssued struct {
	events.BaseEvent
	QuoteID       string        `json:"quote_id"`
	CheckIn       string        `json:"check_in"`
	CheckOut      string        `json:"check_out"`
	RoomCategory  string        `json:"room_category"`
	PaymentMethod string        `json:"payment_method"`
	RequesterRole string        `json:"requester_role"`
	Currency      string        `json:"currency"`
	Breakdown     QuoteSnapshot `json:"breakdown"`
}

// QuoteSnapshot is the serialized form of PriceQuote with money as fixed
// two-place decimal strings.
type QuoteSnapshot struct {
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

func Snapshot(q PriceQuote) QuoteSnapshot {
	return QuoteSnapshot{
		Nights:              q.Nights,
		DailyRate:           money.Format(q.DailyRate),
		BasePrice:           money.Format(q.BasePrice),
		DiscountName:        q.DiscountName,
		DiscountPercentage:  q.DiscountPercentage.String(),
		DiscountAmount:      money.Format(q.DiscountAmount),
		IsRoleBasedDiscount: q.IsRoleBasedDiscount,
		PriceAfterDiscount:  money.Format(q.PriceAfterDiscount),
		PaymentFee:          money.Format(q.PaymentFee),
		SubtotalBeforeTax:   money.Format(q.SubtotalBeforeTax),
		TaxAmount:           money.Format(q.TaxAmount),
		TotalAmount:         money.Format(q.TotalAmount),
		DurationTierApplied: q.DurationTierApplied,
	}
}

func NewQuoteIssued(quoteID string, req StayRequest, q PriceQuote, currency string, at time.Time) QuoteIssued {
	return QuoteIssued{
		BaseEvent: events.BaseEvent{
			ID:        QuoteEventID(quoteID),
			Name:      EventQuoteIssued,
			Aggregate: quoteID,
			Time:      at.UTC(),
		},
		QuoteID:       quoteID,
		CheckIn:       daterange.FormatDay(req.CheckIn),
		CheckOut:      daterange.FormatDay(req.CheckOut),
		RoomCategory:  req.RoomCategory,
		PaymentMethod: string(req.PaymentMethod),
		RequesterRole: string(NormalizeRole(string(req.RequesterRole))),
		Currency:      currency,
		Breakdown:     Snapshot(q),
	}
}
