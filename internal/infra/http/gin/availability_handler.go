package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/dto"
	availabilityapp "tripdesk/internal/app/handlers/availability"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/domain/shared/daterange"
)

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
}

type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Calendar renders ?month=YYYY-MM (default: the current month) with the
// visitor's ?start= and ?end= selection replayed onto it.
func (h AvailabilityHandler) Calendar(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{ListingID: c.Param("id")}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		month, err := time.Parse("2006-01", raw)
		if err != nil {
			badRequest(c, fmt.Errorf("month must be YYYY-MM: %q", raw))
			return
		}
		query.Year, query.Month = month.Year(), month.Month()
	}
	var err error
	if query.Start, err = optionalDay(c.Query("start")); err != nil {
		badRequest(c, err)
		return
	}
	if query.End, err = optionalDay(c.Query("end")); err != nil {
		badRequest(c, err)
		return
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func optionalDay(raw string) (daterange.Day, error) {
	if strings.TrimSpace(raw) == "" {
		return daterange.Day{}, nil
	}
	return daterange.Parse(raw)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
