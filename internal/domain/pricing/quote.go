package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
)

var (
	// DefaultCardFeeRate is the processor fee passed on to card payers.
	DefaultCardFeeRate = decimal.RequireFromString("0.03")
	// DefaultTaxRate applies to the fee-inclusive subtotal.
	DefaultTaxRate = decimal.RequireFromString("0.038")
)

var ErrInvalidRate = errors.New("pricing: rates must lie in [0, 1)")

// PriceQuote is the itemized breakdown of a stay. Monetary fields are rounded
// to two places; every one of them is rounded from its own full-precision value.
type PriceQuote struct {
	Nights              int
	DailyRate           decimal.Decimal
	BasePrice           decimal.Decimal
	DiscountName        *string
	DiscountPercentage  decimal.Decimal
	DiscountAmount      decimal.Decimal
	IsRoleBasedDiscount bool
	PriceAfterDiscount  decimal.Decimal
	PaymentFee          decimal.Decimal
	SubtotalBeforeTax   decimal.Decimal
	TaxAmount           decimal.Decimal
	TotalAmount         decimal.Decimal
	DurationTierApplied int
}

// Calculator is the read-only contract consumed by the application layer.
type Calculator interface {
	Quote(req StayRequest, tiers []RateTier, rules []DiscountRule, today time.Time) (PriceQuote, error)
}

// Engine computes quotes. It holds configuration only and is safe for
// concurrent use.
type Engine struct {
	cardFeeRate   decimal.Decimal
	taxRate       decimal.Decimal
	eligibleRoles map[Role]struct{}
}

type Option func(*Engine)

func WithCardFeeRate(rate decimal.Decimal) Option {
	return func(e *Engine) { e.cardFeeRate = rate }
}

func WithTaxRate(rate decimal.Decimal) Option {
	return func(e *Engine) { e.taxRate = rate }
}

// WithEligibleRoles replaces the roles that unlock role-based discounts.
func WithEligibleRoles(roles ...Role) Option {
	return func(e *Engine) {
		e.eligibleRoles = make(map[Role]struct{}, len(roles))
		for _, r := range roles {
			e.eligibleRoles[NormalizeRole(string(r))] = struct{}{}
		}
	}
}

func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cardFeeRate: DefaultCardFeeRate,
		taxRate:     DefaultTaxRate,
	}
	WithEligibleRoles(DefaultEligibleRoles...)(e)
	for _, opt := range opts {
		opt(e)
	}
	for _, rate := range []decimal.Decimal{e.cardFeeRate, e.taxRate} {
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, ErrInvalidRate
		}
	}
	return e, nil
}

// MustEngine is NewEngine that panics on invalid options.
func MustEngine(opts ...Option) *Engine {
	e, err := NewEngine(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Quote prices req against a snapshot of the rate table and discount
// registry. today is the calendar day used for discount windows.
func (e *Engine) Quote(req StayRequest, tiers []RateTier, rules []DiscountRule, today time.Time) (PriceQuote, error) {
	nights := daterange.NightsBetween(req.CheckIn, req.CheckOut)
	if nights <= 0 {
		return PriceQuote{}, invalid(KindNonPositiveDuration, "stay spans %d nights", nights)
	}
	category := strings.TrimSpace(req.RoomCategory)
	if category == "" {
		return PriceQuote{}, invalid(KindUnknownRoomCategory, "room category is required")
	}
	if !req.PaymentMethod.Valid() {
		return PriceQuote{}, invalid(KindUnsupportedPaymentMethod, "payment method %q", req.PaymentMethod)
	}

	tier, ok, found := SelectTier(tiers, category, nights)
	if !found {
		return PriceQuote{}, invalid(KindNoApplicableRate, "no rate tiers for room category %q", category)
	}
	if !ok {
		return PriceQuote{}, invalid(KindNoApplicableRate, "minimum stay not met for %q with %d nights", category, nights)
	}
	if tier.NightlyRate.IsNegative() {
		return PriceQuote{}, invalid(KindNoApplicableRate, "tier %d of %q has a negative nightly rate", tier.MinDurationNights, category)
	}
	basePrice := tier.NightlyRate.Mul(decimal.NewFromInt(int64(nights)))

	var (
		rule       DiscountRule
		discounted bool
	)
	if e.eligible(req.RequesterRole) {
		rule, discounted = FirstApplicable(rules, true, today)
	}
	if !discounted {
		rule, discounted = FirstApplicable(rules, false, today)
	}

	discountAmount := decimal.Zero
	percentage := decimal.Zero
	var discountName *string
	if discounted {
		percentage = rule.Percentage
		discountAmount = basePrice.Mul(percentage).Shift(-2)
		name := rule.DisplayName()
		discountName = &name
	}
	priceAfterDiscount := basePrice.Sub(discountAmount)

	paymentFee := decimal.Zero
	if req.PaymentMethod == PaymentCard {
		paymentFee = priceAfterDiscount.Mul(e.cardFeeRate)
	}

	subtotal := priceAfterDiscount.Add(paymentFee)
	tax := subtotal.Mul(e.taxRate)
	total := subtotal.Add(tax)

	return PriceQuote{
		Nights:              nights,
		DailyRate:           money.Round(tier.NightlyRate),
		BasePrice:           money.Round(basePrice),
		DiscountName:        discountName,
		DiscountPercentage:  percentage,
		DiscountAmount:      money.Round(discountAmount),
		IsRoleBasedDiscount: discounted && rule.IsRoleBased,
		PriceAfterDiscount:  money.Round(priceAfterDiscount),
		PaymentFee:          money.Round(paymentFee),
		SubtotalBeforeTax:   money.Round(subtotal),
		TaxAmount:           money.Round(tax),
		TotalAmount:         money.Round(total),
		DurationTierApplied: tier.MinDurationNights,
	}, nil
}

func (e *Engine) eligible(role Role) bool {
	role = NormalizeRole(string(role))
	if role == RoleNone {
		return false
	}
	_, ok := e.eligibleRoles[role]
	return ok
}

var _ Calculator = (*Engine)(nil)
