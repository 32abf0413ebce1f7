package ginserver

import (
	"fmt"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/dto"
	"stayquote/internal/app/handlers/quotes"
	"stayquote/internal/app/queries"
	"stayquote/internal/domain/shared/daterange"
)

type QuoteHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
}

type quoteRequest struct {
	CheckIn       string `json:"check_in" binding:"required"`
	CheckOut      string `json:"check_out" binding:"required"`
	RoomCategory  string `json:"room_category"`
	PaymentMethod string `json:"payment_method"`
	RequesterRole string `json:"requester_role"`
}

// stay converts the body. Dates are calendar days only; timestamps are
// rejected rather than truncated.
func (r quoteRequest) stay() (quotes.StayInput, error) {
	checkIn, err := daterange.ParseDay(r.CheckIn)
	if err != nil {
		return quotes.StayInput{}, fmt.Errorf("check_in: %w", err)
	}
	checkOut, err := daterange.ParseDay(r.CheckOut)
	if err != nil {
		return quotes.StayInput{}, fmt.Errorf("check_out: %w", err)
	}
	return quotes.StayInput{
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		RoomCategory:  r.RoomCategory,
		PaymentMethod: r.PaymentMethod,
		RequesterRole: r.RequesterRole,
	}, nil
}

func (h QuoteHandler) bind(c *gin.Context) (quotes.StayInput, bool) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return quotes.StayInput{}, false
	}
	stay, err := req.stay()
	if err != nil {
		badRequest(c, err)
		return quotes.StayInput{}, false
	}
	return stay, true
}

func (h QuoteHandler) Preview(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	stay, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := queries.Ask[quotes.PreviewQuoteQuery, dto.PriceQuote](c.Request.Context(), h.Queries, quotes.PreviewQuoteQuery{Stay: stay})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h QuoteHandler) Issue(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	stay, ok := h.bind(c)
	if !ok {
		return
	}
	cmd := quotes.IssueQuoteCommand{
		Stay:            stay,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}
	result, err := commands.Dispatch[quotes.IssueQuoteCommand, *dto.IssuedQuote](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ QuoteHTTP = QuoteHandler{}
