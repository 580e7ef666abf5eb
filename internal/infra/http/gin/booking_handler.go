package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	bookingapp "tripdesk/internal/app/handlers/booking"
	"tripdesk/internal/domain/shared/daterange"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHTTP interface {
	Create(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID           string        `json:"listing_id"`
	Start               daterange.Day `json:"start"`
	End                 daterange.Day `json:"end"`
	Guests              int           `json:"guests"`
	PaymentPlan         string        `json:"payment_plan"`
	VolunteerMotivation string        `json:"volunteer_motivation"`
	VolunteerDuration   string        `json:"volunteer_duration"`
}

func (h BookingHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		UserID:              session.UserID,
		ListingID:           req.ListingID,
		Start:               req.Start,
		End:                 req.End,
		Guests:              req.Guests,
		PaymentPlan:         req.PaymentPlan,
		VolunteerMotivation: req.VolunteerMotivation,
		VolunteerDuration:   req.VolunteerDuration,
		IdempotencyKeyV:     c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ BookingHTTP = BookingHandler{}
