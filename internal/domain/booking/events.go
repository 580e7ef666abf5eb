package booking

import (
	"time"

	"tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID BookingID
	ListingID listings.ListingID
	UserID    string
	Start     daterange.Day
	End       daterange.Day
	Guests    int
	Total     money.Money
	At        time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type PaymentStatusChanged struct {
	BookingID BookingID
	From      PaymentStatus
	To        PaymentStatus
	At        time.Time
}

func (e PaymentStatusChanged) EventName() string     { return "booking.payment_status_changed" }
func (e PaymentStatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e PaymentStatusChanged) OccurredAt() time.Time { return e.At }
