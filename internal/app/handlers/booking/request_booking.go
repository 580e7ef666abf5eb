package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/outbox"
	"tripdesk/internal/app/uow"
	domainavailability "tripdesk/internal/domain/availability"
	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	domainpricing "tripdesk/internal/domain/pricing"
	"tripdesk/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

var ErrListingIDRequired = errors.New("booking: listing id is required")

type RequestBookingCommand struct {
	UserID              string
	ListingID           string
	Start               daterange.Day
	End                 daterange.Day
	Guests              int
	PaymentPlan         string
	VolunteerMotivation string
	VolunteerDuration   string
	IdempotencyKeyV     string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.RequestBookingResult{} }

func (c RequestBookingCommand) RequiredAccess() middleware.Access { return middleware.AccessSession }

func (c RequestBookingCommand) Validate() error {
	switch {
	case strings.TrimSpace(c.ListingID) == "":
		return ErrListingIDRequired
	case strings.TrimSpace(c.UserID) == "":
		return domainbooking.ErrUserRequired
	case c.Start.IsZero():
		return domainbooking.ErrStartRequired
	case c.Guests < 1:
		return domainbooking.ErrInvalidGuests
	case c.Guests > domainpricing.MaxGuests:
		return fmt.Errorf("%w: %d > %d", domainpricing.ErrTooManyGuests, c.Guests, domainpricing.MaxGuests)
	}
	_, err := domainbooking.ParsePaymentPlan(c.PaymentPlan)
	return err
}

type RequestBookingHandler struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       support.Clock
	Location    *time.Location
	IDGenerator func() string
	Logger      *slog.Logger
}

// Handle re-validates the submitted selection against a freshly built
// calendar, prices it and stores a pending booking. Whatever the client
// computed is ignored.
func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.RequestBookingResult, error) {
	plan, err := domainbooking.ParsePaymentPlan(cmd.PaymentPlan)
	if err != nil {
		return nil, err
	}

	var result *dto.RequestBookingResult
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
		if err != nil {
			return err
		}
		if !listing.IsPublished() {
			return domainlistings.ErrListingNotPublic
		}

		cal, err := support.LoadCalendar(ctx, unit, listing, h.Clock.Today(h.Location))
		if err != nil {
			return err
		}
		sel := domainavailability.Range(cmd.Start, cmd.End)
		if err := domainavailability.CheckSelection(cal, sel, listing.UsesRangeSelection()); err != nil {
			return err
		}
		total, err := domainpricing.ComputeTotal(listing, sel, cmd.Guests)
		if err != nil {
			return err
		}

		params := domainbooking.CreateParams{
			ID:          domainbooking.BookingID(h.newID()),
			ListingID:   listing.ID,
			UserID:      cmd.UserID,
			Start:       sel.Start,
			End:         sel.End,
			Guests:      cmd.Guests,
			PaymentPlan: plan,
			Total:       total,
			CreatedAt:   h.Clock.Now(),
		}
		if listing.Category == domainlistings.CategoryVolunteer {
			params.VolunteerMotivation = cmd.VolunteerMotivation
			params.VolunteerDuration = cmd.VolunteerDuration
		}
		booking, err := domainbooking.NewBooking(params)
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking); err != nil {
			return err
		}

		if h.Logger != nil {
			h.Logger.InfoContext(ctx, "booking requested",
				"booking_id", booking.ID,
				"listing_id", listing.ID,
				"user_id", booking.UserID,
				"start", booking.Start.String(),
				"nights", sel.Nights(),
				"guests", booking.Guests,
				"total", booking.Total.String(),
			)
		}
		result = &dto.RequestBookingResult{
			BookingID:     string(booking.ID),
			PaymentStatus: string(booking.PaymentStatus),
			PaymentPlan:   string(booking.PaymentPlan),
			Total:         dto.MapMoney(booking.Total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *RequestBookingHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

var _ commands.Handler[RequestBookingCommand, *dto.RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}
var _ middleware.Guarded = RequestBookingCommand{}
