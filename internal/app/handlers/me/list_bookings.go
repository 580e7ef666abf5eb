package me

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"tripdesk/internal/app/dto"
	handlersupport "tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
	domainauth "tripdesk/internal/domain/auth"
	domainbooking "tripdesk/internal/domain/booking"
)

const listUserBookingsKey = "me.bookings.list"

var ErrUserIDRequired = errors.New("me: user id is required")

// ListUserBookingsQuery lists one user's bookings, optionally narrowed to a
// payment status.
type ListUserBookingsQuery struct {
	UserID        string
	PaymentStatus string
}

func (q ListUserBookingsQuery) Key() string { return listUserBookingsKey }

func (q ListUserBookingsQuery) RequiredAccess() middleware.Access { return middleware.AccessSession }

func (q ListUserBookingsQuery) Validate() error {
	if strings.TrimSpace(q.UserID) == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(q.PaymentStatus) != "" {
		if _, err := domainbooking.ParsePaymentStatus(q.PaymentStatus); err != nil {
			return err
		}
	}
	return nil
}

type ListUserBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

// Handle lists the caller's own bookings, newest first. Only admins may read
// another user's bookings.
func (h *ListUserBookingsHandler) Handle(ctx context.Context, q ListUserBookingsQuery) (dto.BookingCollection, error) {
	userID := strings.TrimSpace(q.UserID)
	if session, ok := domainauth.FromContext(ctx); ok && session.UserID != userID && !session.IsAdmin() {
		return dto.BookingCollection{}, domainauth.ErrForbidden
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByUser(execCtx, userID)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	var status domainbooking.PaymentStatus
	if strings.TrimSpace(q.PaymentStatus) != "" {
		status, _ = domainbooking.ParsePaymentStatus(q.PaymentStatus)
	}
	cache := handlersupport.NewListingCache(unit.Listings())
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
		h.Logger.Debug("user bookings listed", "user_id", userID, "count", len(items))
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListUserBookingsQuery, dto.BookingCollection] = (*ListUserBookingsHandler)(nil)
var _ middleware.Guarded = ListUserBookingsQuery{}
