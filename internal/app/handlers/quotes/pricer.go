package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayquote/internal/app/policies"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
)

var (
	// ErrProviderUnavailable wraps rate table and discount registry failures.
	// Those are never turned into "no rate" or "no discount".
	ErrProviderUnavailable = errors.New("quotes: pricing data unavailable")
	ErrPricerNotConfigured = errors.New("quotes: pricer missing dependencies")
)

// StayInput is the transport-neutral shape of a stay request.
type StayInput struct {
	CheckIn       time.Time
	CheckOut      time.Time
	RoomCategory  string
	PaymentMethod string
	RequesterRole string
}

func (in StayInput) request() domainpricing.StayRequest {
	return domainpricing.StayRequest{
		CheckIn:       in.CheckIn.UTC(),
		CheckOut:      in.CheckOut.UTC(),
		RoomCategory:  strings.TrimSpace(in.RoomCategory),
		PaymentMethod: domainpricing.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod))),
		RequesterRole: domainpricing.NormalizeRole(in.RequesterRole),
	}
}

// fingerprint is a canonical rendering used to detect idempotency key reuse.
func (in StayInput) fingerprint() string {
	req := in.request()
	return strings.Join([]string{
		req.CheckIn.Format(time.RFC3339Nano),
		req.CheckOut.Format(time.RFC3339Nano),
		req.RoomCategory,
		string(req.PaymentMethod),
		string(req.RequesterRole),
	}, "|")
}

// Validate rejects requests that cannot be priced whatever the provider data
// says. Duration is checked first, on the instants as given.
func (in StayInput) Validate() error {
	req := in.request()
	span := daterange.DateRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if err := span.Validate(); err != nil {
		return domainpricing.NewInvalidRequest(domainpricing.KindNonPositiveDuration, fmt.Sprintf("stay spans %d nights: %v", span.Nights(), err))
	}
	if req.RoomCategory == "" {
		return domainpricing.NewInvalidRequest(domainpricing.KindUnknownRoomCategory, "room category is required")
	}
	if !req.PaymentMethod.Valid() {
		return domainpricing.NewInvalidRequest(domainpricing.KindUnsupportedPaymentMethod, fmt.Sprintf("payment method %q", req.PaymentMethod))
	}
	return nil
}

// Priced is one engine run together with the instant it was computed at.
// Today is the calendar day of At in the business zone.
type Priced struct {
	Request domainpricing.StayRequest
	Quote   domainpricing.PriceQuote
	At      time.Time
	Today   time.Time
}

// Pricer loads a consistent snapshot from both providers and runs the engine.
type Pricer struct {
	Rates     policies.RateTableProvider
	Discounts policies.DiscountRegistry
	Engine    domainpricing.Calculator
	Clock     policies.Clock
	Currency  string
}

func (p Pricer) Price(ctx context.Context, in StayInput) (Priced, error) {
	if p.Rates == nil || p.Discounts == nil || p.Engine == nil || p.Clock == nil {
		return Priced{}, ErrPricerNotConfigured
	}
	if err := in.Validate(); err != nil {
		return Priced{}, err
	}
	req := in.request()

	tiers, err := p.Rates.Tiers(ctx, req.RoomCategory)
	if err != nil {
		return Priced{}, ResolveRateError(req.RoomCategory, err)
	}
	now := p.Clock.Now()
	today := daterange.Day(now)
	rules, err := p.Discounts.Rules(ctx, today)
	if err != nil {
		return Priced{}, fmt.Errorf("%w: discount registry: %w", ErrProviderUnavailable, err)
	}
	quote, err := p.Engine.Quote(req, tiers, rules, today)
	if err != nil {
		return Priced{}, err
	}
	return Priced{Request: req, Quote: quote, At: now.UTC(), Today: today}, nil
}

// ResolveRateError maps a rate provider failure onto the quote error taxonomy.
func ResolveRateError(category string, err error) error {
	if errors.Is(err, policies.ErrCategoryNotFound) {
		return domainpricing.NewInvalidRequest(domainpricing.KindUnknownRoomCategory, fmt.Sprintf("room category %q", category))
	}
	return fmt.Errorf("%w: rate table: %w", ErrProviderUnavailable, err)
}
