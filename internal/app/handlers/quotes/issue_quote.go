package quotes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/middleware"
	"stayquote/internal/app/outbox"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/money"
)

const (
	issueQuoteKey = "quotes.issue"

	maxIdempotencyKeyLen = 255
)

var ErrIdempotencyKeyTooLong = errors.New("quotes: idempotency key too long")

var quoteIDSpace = uuid.MustParse("0b7e52d4-3f6a-4c1b-8e27-9d5a6c4f1e83")

type IssueQuoteCommand struct {
	QuoteID         string
	Stay            StayInput
	IdempotencyKeyV string
}

func (c IssueQuoteCommand) Key() string { return issueQuoteKey }

func (c IssueQuoteCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c IssueQuoteCommand) Fingerprint() string { return c.Stay.fingerprint() }

func (c IssueQuoteCommand) ResultPrototype() any { return &dto.IssuedQuote{} }

// quoteID returns the caller's ID, else one derived from the idempotency key
// and request so a retry that reaches the handler reuses it.
func (c IssueQuoteCommand) quoteID() string {
	if c.QuoteID != "" {
		return c.QuoteID
	}
	if c.IdempotencyKeyV == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(quoteIDSpace, []byte(c.IdempotencyKeyV+"|"+c.Fingerprint())).String()
}

func (c IssueQuoteCommand) Validate() error {
	if len(c.IdempotencyKeyV) > maxIdempotencyKeyLen {
		return ErrIdempotencyKeyTooLong
	}
	return c.Stay.Validate()
}

// IssueQuoteHandler prices a stay and records a quote.issued event so the
// checkout flow can invoice exactly what was shown.
type IssueQuoteHandler struct {
	Pricer  Pricer
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *IssueQuoteHandler) Handle(ctx context.Context, cmd IssueQuoteCommand) (*dto.IssuedQuote, error) {
	priced, err := h.Pricer.Price(ctx, cmd.Stay)
	if err != nil {
		return nil, err
	}
	req, quote := priced.Request, priced.Quote

	quoteID := cmd.quoteID()
	event := domainpricing.NewQuoteIssued(quoteID, req, quote, h.Pricer.Currency, priced.At)
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, event); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		total := money.Money{Amount: quote.TotalAmount, Currency: h.Pricer.Currency}
		h.Logger.InfoContext(ctx, "quote issued",
			"quote_id", quoteID,
			"room_category", req.RoomCategory,
			"nights", quote.Nights,
			"payment_method", req.PaymentMethod,
			"total", total.Rounded().String(),
		)
	}

	return &dto.IssuedQuote{
		QuoteID:  quoteID,
		IssuedAt: priced.At.Format(time.RFC3339),
		Quote:    dto.MapPriceQuote(quote, h.Pricer.Currency),
	}, nil
}

var _ commands.Handler[IssueQuoteCommand, *dto.IssuedQuote] = (*IssueQuoteHandler)(nil)
var _ middleware.IdempotentCommand = IssueQuoteCommand{}
var _ middleware.Validatable = IssueQuoteCommand{}
