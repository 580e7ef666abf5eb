package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/outbox"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
)

const (
	listBookingsKey        = "admin.bookings.list"
	updatePaymentStatusKey = "admin.bookings.payment_status"
)

var ErrBookingIDRequired = errors.New("booking: booking id is required")

// ListBookingsQuery feeds the back-office bookings table. Empty filters match
// everything.
type ListBookingsQuery struct {
	ListingID     string
	PaymentStatus string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

func (q ListBookingsQuery) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (q ListBookingsQuery) Validate() error {
	if strings.TrimSpace(q.PaymentStatus) == "" {
		return nil
	}
	_, err := domainbooking.ParsePaymentStatus(q.PaymentStatus)
	return err
}

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var bookings []*domainbooking.Booking
	if listingID := strings.TrimSpace(q.ListingID); listingID != "" {
		bookings, err = unit.Bookings().ListByListing(execCtx, domainlistings.ListingID(listingID))
	} else {
		bookings, err = unit.Bookings().List(execCtx)
	}
	if err != nil {
		return dto.BookingCollection{}, err
	}

	var status domainbooking.PaymentStatus
	if strings.TrimSpace(q.PaymentStatus) != "" {
		status, _ = domainbooking.ParsePaymentStatus(q.PaymentStatus)
	}

	cache := support.NewListingCache(unit.Listings())
	items := make([]dto.Booking, 0, len(bookings))
	for _, booking := range bookings {
		if status != "" && booking.PaymentStatus != status {
			continue
		}
		listing, err := cache.Get(execCtx, booking.ListingID)
		if err != nil && h.Logger != nil {
			h.Logger.Warn("listing snapshot missing for booking", "booking_id", booking.ID, "listing_id", booking.ListingID, "error", err)
		}
		items = append(items, dto.MapBooking(booking, listing))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	if h.Logger != nil {
		h.Logger.Debug("admin bookings listed", "count", len(items), "status", string(status))
	}
	return dto.BookingCollection{Items: items}, nil
}

type UpdatePaymentStatusCommand struct {
	BookingID string
	Status    string
}

func (c UpdatePaymentStatusCommand) Key() string { return updatePaymentStatusKey }

func (c UpdatePaymentStatusCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c UpdatePaymentStatusCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return ErrBookingIDRequired
	}
	_, err := domainbooking.ParsePaymentStatus(c.Status)
	return err
}

type UpdatePaymentStatusHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
	Logger     *slog.Logger
}

func (h *UpdatePaymentStatusHandler) Handle(ctx context.Context, cmd UpdatePaymentStatusCommand) (*dto.PaymentStatusResult, error) {
	next, err := domainbooking.ParsePaymentStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	var result *dto.PaymentStatusResult
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
		if err != nil {
			return err
		}
		previous := booking.PaymentStatus
		if err := booking.UpdatePaymentStatus(next, h.Clock.Now()); err != nil {
			return err
		}
		if previous != next {
			if err := unit.Bookings().Save(ctx, booking); err != nil {
				return err
			}
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking); err != nil {
				return err
			}
			if h.Logger != nil {
				h.Logger.InfoContext(ctx, "booking payment status updated", "booking_id", booking.ID, "from", previous, "to", next)
			}
		}
		result = &dto.PaymentStatusResult{BookingID: string(booking.ID), PaymentStatus: string(booking.PaymentStatus)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ queries.Handler[ListBookingsQuery, dto.BookingCollection] = (*ListBookingsHandler)(nil)
var _ commands.Handler[UpdatePaymentStatusCommand, *dto.PaymentStatusResult] = (*UpdatePaymentStatusHandler)(nil)
var _ middleware.Guarded = ListBookingsQuery{}
var _ middleware.Guarded = UpdatePaymentStatusCommand{}
