package dto

import (
	"time"

	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
)

type BookingListingSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Location string `json:"location,omitempty"`
}

type Booking struct {
	ID                  string                 `json:"id"`
	Listing             BookingListingSnapshot `json:"listing"`
	UserID              string                 `json:"user_id"`
	Start               string                 `json:"start"`
	End                 string                 `json:"end,omitempty"`
	Guests              int                    `json:"guests"`
	PaymentStatus       string                 `json:"payment_status"`
	PaymentPlan         string                 `json:"payment_plan"`
	Total               MoneyDTO               `json:"total"`
	VolunteerMotivation string                 `json:"volunteer_motivation,omitempty"`
	VolunteerDuration   string                 `json:"volunteer_duration,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

// MapBooking tolerates a missing listing, which happens when a listing was
// removed after the booking was taken.
func MapBooking(b *domainbooking.Booking, listing *domainlistings.Listing) Booking {
	snapshot := BookingListingSnapshot{ID: string(b.ListingID)}
	if listing != nil {
		snapshot.Title = listing.Title
		snapshot.Category = string(listing.Category)
		snapshot.Location = listing.Location
	}
	return Booking{
		ID:                  string(b.ID),
		Listing:             snapshot,
		UserID:              b.UserID,
		Start:               dayString(b.Start),
		End:                 dayString(b.End),
		Guests:              b.Guests,
		PaymentStatus:       string(b.PaymentStatus),
		PaymentPlan:         string(b.PaymentPlan),
		Total:               MapMoney(b.Total),
		VolunteerMotivation: b.VolunteerMotivation,
		VolunteerDuration:   b.VolunteerDuration,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

type RequestBookingResult struct {
	BookingID     string   `json:"booking_id"`
	PaymentStatus string   `json:"payment_status"`
	PaymentPlan   string   `json:"payment_plan"`
	Total         MoneyDTO `json:"total"`
}

type PaymentStatusResult struct {
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
}
