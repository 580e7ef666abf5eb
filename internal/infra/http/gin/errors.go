package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/app/commands"
	availabilityapp "tripdesk/internal/app/handlers/availability"
	bookingapp "tripdesk/internal/app/handlers/booking"
	listingapp "tripdesk/internal/app/handlers/listings"
	meapp "tripdesk/internal/app/handlers/me"
	pricingapp "tripdesk/internal/app/handlers/pricing"
	reviewapp "tripdesk/internal/app/handlers/reviews"
	"tripdesk/internal/app/queries"
	authsvc "tripdesk/internal/app/services/auth"
	domainauth "tripdesk/internal/domain/auth"
	domainavailability "tripdesk/internal/domain/availability"
	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	domainpricing "tripdesk/internal/domain/pricing"
	domainreviews "tripdesk/internal/domain/reviews"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
	mongostore "tripdesk/internal/infra/db/mongo"
	"tripdesk/internal/infra/storage/memory"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type errorClass struct {
	status int
	code   string
	errs   []error
}

// errorClasses is checked in order; the first class holding a matching
// sentinel decides the response.
var errorClasses = []errorClass{
	{http.StatusUnauthorized, "unauthorized", []error{
		domainauth.ErrTokenRequired,
		domainauth.ErrTokenInvalid,
		domainauth.ErrSessionExpired,
		domainauth.ErrUnauthorized,
		authsvc.ErrMalformedHeader,
	}},
	{http.StatusForbidden, "forbidden", []error{domainauth.ErrForbidden}},
	{http.StatusNotFound, "not_found", []error{
		domainlistings.ErrListingNotFound,
		domainlistings.ErrListingNotPublic,
		domainbooking.ErrBookingNotFound,
		domainreviews.ErrReviewNotFound,
	}},
	{http.StatusConflict, "date_unavailable", []error{
		domainavailability.ErrDayNotSelectable,
		domainavailability.ErrRangeIncludesBooked,
	}},
	{http.StatusConflict, "conflict", []error{
		memory.ErrConcurrentUpdate,
		mongostore.ErrConcurrentUpdate,
		domainbooking.ErrInvalidTransition,
		domainlistings.ErrInvalidState,
		reviewapp.ErrDuplicateReview,
	}},
	{http.StatusBadRequest, "invalid_request", []error{
		daterange.ErrInvalidDay,
		daterange.ErrInvalidRange,
		money.ErrInvalidCurrency,
		domainavailability.ErrSelectionEmpty,
		domainavailability.ErrSelectionIncomplete,
		domainavailability.ErrRangeNotSupported,
		domainbooking.ErrInvalidGuests,
		domainbooking.ErrInvalidRange,
		domainbooking.ErrStartRequired,
		domainbooking.ErrUserRequired,
		domainbooking.ErrInvalidPaymentStatus,
		domainbooking.ErrInvalidPaymentPlan,
		domainlistings.ErrTitleRequired,
		domainlistings.ErrInvalidCategory,
		domainlistings.ErrNegativePrice,
		domainlistings.ErrPastDate,
		domainpricing.ErrInvalidGuests,
		domainpricing.ErrTooManyGuests,
		money.ErrAmountOverflow,
		availabilityapp.ErrListingIDRequired,
		availabilityapp.ErrInvalidMonth,
		bookingapp.ErrListingIDRequired,
		bookingapp.ErrBookingIDRequired,
		listingapp.ErrListingIDRequired,
		meapp.ErrUserIDRequired,
		pricingapp.ErrListingIDRequired,
		domainreviews.ErrInvalidRating,
		domainreviews.ErrCommentTooLong,
		domainreviews.ErrInvalidStatus,
		domainreviews.ErrUserRequired,
		domainreviews.ErrListingRequired,
		reviewapp.ErrListingIDRequired,
		reviewapp.ErrReviewIDRequired,
	}},
	{http.StatusNotImplemented, "unsupported", []error{
		commands.ErrHandlerNotFound,
		queries.ErrHandlerNotFound,
	}},
}

func classify(err error) (int, string) {
	for _, class := range errorClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.status, class.code
			}
		}
	}
	return http.StatusInternalServerError, "internal"
}

// respondError writes the JSON error body. Internal failures are logged and
// hidden from the caller.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: "internal error", Code: code})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request"})
}
