package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/app/outbox"
	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
)

type fakeRates struct {
	tiers map[string][]domainpricing.RateTier
	err   error
	calls int
}

func (f *fakeRates) Tiers(_ context.Context, category string) ([]domainpricing.RateTier, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	tiers, ok := f.tiers[category]
	if !ok {
		return nil, policies.ErrCategoryNotFound
	}
	return tiers, nil
}

type fakeDiscounts struct {
	rules []domainpricing.DiscountRule
	err   error
	today time.Time
}

func (f *fakeDiscounts) Rules(_ context.Context, today time.Time) ([]domainpricing.DiscountRule, error) {
	f.today = today
	return f.rules, f.err
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time   { return c.now }
func (c fixedClock) Today() time.Time { return time.Date(c.now.Year(), c.now.Month(), c.now.Day(), 0, 0, 0, 0, time.UTC) }

type countingClock struct {
	now        time.Time
	nowCalls   int
	todayCalls int
}

func (c *countingClock) Now() time.Time {
	c.nowCalls++
	return c.now
}

func (c *countingClock) Today() time.Time {
	c.todayCalls++
	return day(c.now.Year(), c.now.Month(), c.now.Day())
}

type recordingBox struct{ records []outbox.EventRecord }

func (b *recordingBox) Add(_ context.Context, rec outbox.EventRecord) error {
	b.records = append(b.records, rec)
	return nil
}
func (b *recordingBox) Flush(context.Context) error { return nil }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPricer() (Pricer, *fakeRates, *fakeDiscounts) {
	rates := &fakeRates{tiers: map[string][]domainpricing.RateTier{
		"private": {
			{RoomCategory: "private", MinDurationNights: 1, NightlyRate: decimal.NewFromInt(320)},
			{RoomCategory: "private", MinDurationNights: 8, NightlyRate: decimal.NewFromInt(315)},
		},
	}}
	discounts := &fakeDiscounts{}
	return Pricer{
		Rates:     rates,
		Discounts: discounts,
		Engine:    domainpricing.MustEngine(),
		Clock:     fixedClock{now: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)},
		Currency:  "EUR",
	}, rates, discounts
}

func tenNights() StayInput {
	return StayInput{
		CheckIn:       day(2025, 7, 1),
		CheckOut:      day(2025, 7, 11),
		RoomCategory:  "private",
		PaymentMethod: "Card",
	}
}

func TestPriceNormalizesInputAndPassesToday(t *testing.T) {
	pricer, _, discounts := newPricer()
	priced, err := pricer.Price(context.Background(), tenNights())
	require.NoError(t, err)

	assert.Equal(t, domainpricing.PaymentCard, priced.Request.PaymentMethod)
	assert.Equal(t, domainpricing.RoleNone, priced.Request.RequesterRole)
	assert.Equal(t, day(2025, 6, 15), discounts.today)
	assert.Equal(t, day(2025, 6, 15), priced.Today)
	assert.Equal(t, "3367.79", priced.Quote.TotalAmount.Round(2).StringFixed(2))
}

func TestPriceCountsNightsOnInstants(t *testing.T) {
	pricer, _, _ := newPricer()
	in := tenNights()
	in.CheckIn = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	in.CheckOut = time.Date(2025, 7, 3, 11, 0, 0, 0, time.UTC)

	require.NoError(t, in.Validate())
	priced, err := pricer.Price(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 3, priced.Quote.Nights)
	assert.Equal(t, "960.00", priced.Quote.BasePrice.StringFixed(2))
}

func TestPriceRejectsSpanEndingBeforeStart(t *testing.T) {
	pricer, rates, _ := newPricer()
	in := tenNights()
	// Later calendar day but an earlier instant.
	in.CheckIn = time.Date(2025, 7, 1, 23, 0, 0, 0, time.FixedZone("-05", -5*3600))
	in.CheckOut = time.Date(2025, 7, 2, 1, 0, 0, 0, time.FixedZone("+02", 2*3600))

	_, err := pricer.Price(context.Background(), in)
	kind, ok := domainpricing.KindOf(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, domainpricing.KindNonPositiveDuration, kind)
	assert.Zero(t, rates.calls)
}

func TestPriceReadsClockOnce(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	pricer, _, discounts := newPricer()
	// 01:00 on the 16th in the business zone is still the 15th in UTC.
	clk := &countingClock{now: time.Date(2025, 6, 16, 1, 0, 0, 0, tokyo)}
	pricer.Clock = clk

	priced, err := pricer.Price(context.Background(), tenNights())
	require.NoError(t, err)
	assert.Equal(t, 1, clk.nowCalls)
	assert.Zero(t, clk.todayCalls)
	assert.Equal(t, day(2025, 6, 16), discounts.today)
	assert.Equal(t, day(2025, 6, 16), priced.Today)
	assert.Equal(t, time.Date(2025, 6, 15, 16, 0, 0, 0, time.UTC), priced.At)
}

func TestPriceRejectsBeforeFetching(t *testing.T) {
	tests := map[string]struct {
		in   StayInput
		kind domainpricing.Kind
	}{
		"same day": {
			in:   StayInput{CheckIn: day(2025, 7, 1), CheckOut: day(2025, 7, 1), PaymentMethod: "bitcoin"},
			kind: domainpricing.KindNonPositiveDuration,
		},
		"blank category": {
			in:   StayInput{CheckIn: day(2025, 7, 1), CheckOut: day(2025, 7, 2), PaymentMethod: "card"},
			kind: domainpricing.KindUnknownRoomCategory,
		},
		"payment method": {
			in:   StayInput{CheckIn: day(2025, 7, 1), CheckOut: day(2025, 7, 2), RoomCategory: "private", PaymentMethod: "cash"},
			kind: domainpricing.KindUnsupportedPaymentMethod,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pricer, rates, _ := newPricer()
			_, err := pricer.Price(context.Background(), tt.in)
			kind, ok := domainpricing.KindOf(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.kind, kind)
			assert.Zero(t, rates.calls)
		})
	}
}

func TestPriceMapsProviderErrors(t *testing.T) {
	pricer, rates, discounts := newPricer()
	in := tenNights()
	in.RoomCategory = "suite"
	_, err := pricer.Price(context.Background(), in)
	kind, _ := domainpricing.KindOf(err)
	assert.Equal(t, domainpricing.KindUnknownRoomCategory, kind)

	rates.err = errors.New("connection refused")
	_, err = pricer.Price(context.Background(), tenNights())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.False(t, errors.Is(err, domainpricing.ErrInvalidRequest))

	rates.err = nil
	discounts.err = errors.New("timeout")
	_, err = pricer.Price(context.Background(), tenNights())
	assert.ErrorIs(t, err, ErrProviderUnavailable, "a registry outage is never read as no discount")
}

func TestPriceRequiresDependencies(t *testing.T) {
	_, err := Pricer{}.Price(context.Background(), tenNights())
	assert.ErrorIs(t, err, ErrPricerNotConfigured)
}

func TestPreviewQuoteHandler(t *testing.T) {
	pricer, _, discounts := newPricer()
	discounts.rules = []domainpricing.DiscountRule{{
		Name:       "Summer",
		Active:     true,
		Percentage: decimal.NewFromInt(10),
		StartDate:  day(2025, 6, 1),
		EndDate:    day(2025, 6, 30),
	}}
	h := &PreviewQuoteHandler{Pricer: pricer}

	out, err := h.Handle(context.Background(), PreviewQuoteQuery{Stay: tenNights()})
	require.NoError(t, err)
	assert.Equal(t, "EUR", out.Currency)
	require.NotNil(t, out.DiscountName)
	assert.Equal(t, "Summer", *out.DiscountName)
	assert.Equal(t, "315.00", out.DiscountAmount)
	assert.Equal(t, "2920.05", out.SubtotalBeforeTax)
}

func TestIssueQuoteRecordsEvent(t *testing.T) {
	pricer, _, _ := newPricer()
	box := &recordingBox{}
	h := &IssueQuoteHandler{Pricer: pricer, Outbox: box, Encoder: outbox.JSONEventEncoder{}}

	res, err := h.Handle(context.Background(), IssueQuoteCommand{QuoteID: "q-1", Stay: tenNights()})
	require.NoError(t, err)
	assert.Equal(t, "q-1", res.QuoteID)
	assert.Equal(t, "2025-06-15T10:30:00Z", res.IssuedAt)
	assert.Equal(t, "3367.79", res.Quote.TotalAmount)

	require.Len(t, box.records, 1)
	rec := box.records[0]
	assert.Equal(t, domainpricing.EventQuoteIssued, rec.Name)
	assert.Equal(t, "q-1", rec.Aggregate)

	var payload domainpricing.QuoteIssued
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, "2025-07-01", payload.CheckIn)
	assert.Equal(t, "card", payload.PaymentMethod)
	assert.Equal(t, "3367.79", payload.Breakdown.TotalAmount)
	assert.Equal(t, domainpricing.QuoteEventID("q-1"), rec.ID)
}

func TestIssueQuoteIssuedAtMatchesDiscountDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	pricer, _, discounts := newPricer()
	pricer.Clock = &countingClock{now: time.Date(2025, 6, 16, 1, 0, 0, 0, tokyo)}
	h := &IssueQuoteHandler{Pricer: pricer, Outbox: &recordingBox{}}

	res, err := h.Handle(context.Background(), IssueQuoteCommand{Stay: tenNights()})
	require.NoError(t, err)
	issuedAt, err := time.Parse(time.RFC3339, res.IssuedAt)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15T16:00:00Z", res.IssuedAt)
	assert.Equal(t, discounts.today, day(2025, 6, 16))
	assert.Equal(t, discounts.today.Format("2006-01-02"), issuedAt.In(tokyo).Format("2006-01-02"))
}

func TestIssueQuoteRetryReusesQuoteID(t *testing.T) {
	pricer, _, _ := newPricer()
	box := &recordingBox{}
	h := &IssueQuoteHandler{Pricer: pricer, Outbox: box}
	cmd := IssueQuoteCommand{Stay: tenNights(), IdempotencyKeyV: "booking-42"}

	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	retry, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, first.QuoteID, retry.QuoteID)
	require.Len(t, box.records, 2)
	assert.Equal(t, box.records[0].ID, box.records[1].ID, "stores drop the repeated record by ID")

	other := cmd
	other.IdempotencyKeyV = "booking-43"
	third, err := h.Handle(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, first.QuoteID, third.QuoteID)

	anonymous, err := h.Handle(context.Background(), IssueQuoteCommand{Stay: tenNights()})
	require.NoError(t, err)
	assert.NotEqual(t, first.QuoteID, anonymous.QuoteID)
}

func TestIssueQuoteRejectedWritesNothing(t *testing.T) {
	pricer, _, _ := newPricer()
	box := &recordingBox{}
	h := &IssueQuoteHandler{Pricer: pricer, Outbox: box}

	in := tenNights()
	in.CheckOut = in.CheckIn
	_, err := h.Handle(context.Background(), IssueQuoteCommand{Stay: in})
	require.ErrorIs(t, err, domainpricing.ErrInvalidRequest)
	assert.Empty(t, box.records)
}

func TestIssueQuoteCommandContract(t *testing.T) {
	a := IssueQuoteCommand{Stay: tenNights(), IdempotencyKeyV: "k"}
	b := a
	b.Stay.PaymentMethod = " card "
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "fingerprint uses normalized input")

	b.Stay.RequesterRole = "co-curator"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	a.IdempotencyKeyV = string(long)
	assert.ErrorIs(t, a.Validate(), ErrIdempotencyKeyTooLong)
}
