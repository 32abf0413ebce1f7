package quotes

import (
	"context"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/middleware"
	"stayquote/internal/app/queries"
)

const previewQuoteKey = "quotes.preview"

type PreviewQuoteQuery struct {
	Stay StayInput
}

func (PreviewQuoteQuery) Key() string { return previewQuoteKey }

func (q PreviewQuoteQuery) Validate() error { return q.Stay.Validate() }

// PreviewQuoteHandler prices a stay without recording anything.
type PreviewQuoteHandler struct {
	Pricer Pricer
}

func (h *PreviewQuoteHandler) Handle(ctx context.Context, q PreviewQuoteQuery) (dto.PriceQuote, error) {
	priced, err := h.Pricer.Price(ctx, q.Stay)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	return dto.MapPriceQuote(priced.Quote, h.Pricer.Currency), nil
}

var _ queries.Handler[PreviewQuoteQuery, dto.PriceQuote] = (*PreviewQuoteHandler)(nil)
var _ middleware.Validatable = PreviewQuoteQuery{}
