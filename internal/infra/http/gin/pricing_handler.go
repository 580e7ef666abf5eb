package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/dto"
	pricingapp "tripdesk/internal/app/handlers/pricing"
	"tripdesk/internal/app/queries"
)

type PricingHTTP interface {
	Quote(c *gin.Context)
}

type PricingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Quote prices ?start=&end=&guests= for a listing; guests defaults to 1.
func (h PricingHandler) Quote(c *gin.Context) {
	query := pricingapp.GetQuoteQuery{ListingID: c.Param("id"), Guests: 1}
	var err error
	if query.Start, err = optionalDay(c.Query("start")); err != nil {
		badRequest(c, err)
		return
	}
	if query.End, err = optionalDay(c.Query("end")); err != nil {
		badRequest(c, err)
		return
	}
	if raw := strings.TrimSpace(c.Query("guests")); raw != "" {
		if query.Guests, err = strconv.Atoi(raw); err != nil {
			badRequest(c, fmt.Errorf("guests must be a number: %q", raw))
			return
		}
	}
	result, err := queries.Ask[pricingapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
