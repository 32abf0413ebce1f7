package catalog

import (
	"context"
	"fmt"
	"time"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/quotes"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/queries"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
)

const activeDiscountsKey = "discounts.active"

// ActiveDiscountsQuery lists discounts applicable on Date; zero means today.
type ActiveDiscountsQuery struct {
	Date time.Time
}

func (ActiveDiscountsQuery) Key() string { return activeDiscountsKey }

type ActiveDiscountsHandler struct {
	Discounts policies.DiscountRegistry
	Clock     policies.Clock
}

func (h *ActiveDiscountsHandler) Handle(ctx context.Context, q ActiveDiscountsQuery) (dto.DiscountCollection, error) {
	date := q.Date
	if date.IsZero() {
		date = h.Clock.Today()
	}
	date = daterange.Day(date)
	rules, err := h.Discounts.Rules(ctx, date)
	if err != nil {
		return dto.DiscountCollection{}, fmt.Errorf("%w: discount registry: %w", quotes.ErrProviderUnavailable, err)
	}
	active := domainpricing.ActiveOn(rules, date)
	out := dto.DiscountCollection{Date: daterange.FormatDay(date), Items: make([]dto.Discount, 0, len(active))}
	for _, r := range active {
		out.Items = append(out.Items, dto.MapDiscount(r))
	}
	return out, nil
}

var _ queries.Handler[ActiveDiscountsQuery, dto.DiscountCollection] = (*ActiveDiscountsHandler)(nil)
