package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/dto"
	meapp "tripdesk/internal/app/handlers/me"
	"tripdesk/internal/app/queries"
)

type MeHTTP interface {
	ListBookings(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// ListBookings serves the caller's bookings, newest first, filtered by
// ?payment_status= when given.
func (h MeHandler) ListBookings(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	query := meapp.ListUserBookingsQuery{
		UserID:        session.UserID,
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
	}
	result, err := queries.Ask[meapp.ListUserBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = MeHandler{}
