package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	bookingapp "tripdesk/internal/app/handlers/booking"
	listingapp "tripdesk/internal/app/handlers/listings"
	"tripdesk/internal/app/queries"
	domainauth "tripdesk/internal/domain/auth"
	"tripdesk/internal/domain/shared/daterange"
)

type AdminHTTP interface {
	ListListings(c *gin.Context)
	CreateListing(c *gin.Context)
	PublishListing(c *gin.Context)
	UnpublishListing(c *gin.Context)
	ToggleAvailability(c *gin.Context)
	SetAvailability(c *gin.Context)
	ListBookings(c *gin.Context)
	UpdatePaymentStatus(c *gin.Context)
}

// AdminHandler serves the back office. The buses enforce the admin role as
// well; RequireAdmin only fails fast before body parsing.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := requireSession(c)
		if !ok {
			return
		}
		if !session.IsAdmin() {
			respondError(c, nil, domainauth.ErrForbidden)
			return
		}
		c.Next()
	}
}

type createListingRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Category     string          `json:"category"`
	PriceCents   int64           `json:"price_cents"`
	Availability []daterange.Day `json:"availability"`
	Publish      bool            `json:"publish"`
}

type toggleAvailabilityRequest struct {
	Date daterange.Day `json:"date"`
}

type setAvailabilityRequest struct {
	Dates []daterange.Day `json:"dates"`
}

type paymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h AdminHandler) ListListings(c *gin.Context) {
	query := listingapp.ListListingsQuery{Category: c.Query("category"), IncludeDrafts: true}
	result, err := queries.Ask[listingapp.ListListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) CreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.CreateListingCommand{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Category:     req.Category,
		PriceCents:   req.PriceCents,
		Availability: req.Availability,
		Publish:      req.Publish,
	}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AdminHandler) PublishListing(c *gin.Context) {
	cmd := listingapp.PublishListingCommand{ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.PublishListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) UnpublishListing(c *gin.Context) {
	cmd := listingapp.UnpublishListingCommand{ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.UnpublishListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ToggleAvailability(c *gin.Context) {
	var req toggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.ToggleAvailabilityCommand{ListingID: c.Param("id"), Date: req.Date}
	result, err := commands.Dispatch[listingapp.ToggleAvailabilityCommand, *dto.AvailabilityToggle](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) SetAvailability(c *gin.Context) {
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := listingapp.SetAvailabilityCommand{ListingID: c.Param("id"), Dates: req.Dates}
	result, err := commands.Dispatch[listingapp.SetAvailabilityCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListBookings(c *gin.Context) {
	query := bookingapp.ListBookingsQuery{
		ListingID:     c.Query("listing_id"),
		PaymentStatus: c.Query("payment_status"),
	}
	result, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.UpdatePaymentStatusCommand{BookingID: c.Param("id"), Status: req.Status}
	result, err := commands.Dispatch[bookingapp.UpdatePaymentStatusCommand, *dto.PaymentStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
