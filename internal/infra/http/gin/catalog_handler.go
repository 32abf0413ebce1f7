package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/dto"
	catalogapp "stayquote/internal/app/handlers/catalog"
	"stayquote/internal/app/queries"
	"stayquote/internal/domain/shared/daterange"
)

type CatalogHandler struct {
	Queries queries.Bus
}

func (h CatalogHandler) Rates(c *gin.Context) {
	query := catalogapp.ListRatesQuery{RoomCategory: c.Param("category")}
	result, err := queries.Ask[catalogapp.ListRatesQuery, dto.RateTable](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) ActiveDiscounts(c *gin.Context) {
	var date time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := daterange.ParseDay(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		date = parsed
	}
	query := catalogapp.ActiveDiscountsQuery{Date: date}
	result, err := queries.Ask[catalogapp.ActiveDiscountsQuery, dto.DiscountCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CatalogHTTP = CatalogHandler{}
