package catalog

import (
	"context"
	"strings"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/quotes"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/queries"
	domainpricing "stayquote/internal/domain/pricing"
)

const listRatesKey = "rates.list"

type ListRatesQuery struct {
	RoomCategory string
}

func (ListRatesQuery) Key() string { return listRatesKey }

type ListRatesHandler struct {
	Rates    policies.RateTableProvider
	Currency string
}

func (h *ListRatesHandler) Handle(ctx context.Context, q ListRatesQuery) (dto.RateTable, error) {
	category := strings.TrimSpace(q.RoomCategory)
	if category == "" {
		return dto.RateTable{}, domainpricing.NewInvalidRequest(domainpricing.KindUnknownRoomCategory, "room category is required")
	}
	tiers, err := h.Rates.Tiers(ctx, category)
	if err != nil {
		return dto.RateTable{}, quotes.ResolveRateError(category, err)
	}
	sorted := append([]domainpricing.RateTier(nil), tiers...)
	domainpricing.SortTiers(sorted)
	return dto.MapRateTable(category, h.Currency, sorted), nil
}

var _ queries.Handler[ListRatesQuery, dto.RateTable] = (*ListRatesHandler)(nil)
