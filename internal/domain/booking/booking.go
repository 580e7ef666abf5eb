package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/events"
	"tripdesk/internal/domain/shared/money"
)

var (
	ErrInvalidGuests        = errors.New("booking: guests count must be positive")
	ErrInvalidRange         = errors.New("booking: end date must be after start date")
	ErrStartRequired        = errors.New("booking: start date is required")
	ErrUserRequired         = errors.New("booking: user id is required")
	ErrNegativeTotal        = errors.New("booking: total must be non-negative")
	ErrInvalidPaymentStatus = errors.New("booking: unknown payment status")
	ErrInvalidPaymentPlan   = errors.New("booking: unknown payment plan")
	ErrInvalidTransition    = errors.New("booking: invalid payment status transition")
	ErrBookingNotFound      = errors.New("booking: not found")
)

type BookingID string

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentPaid      PaymentStatus = "paid"
	PaymentPartial   PaymentStatus = "partial"
)

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentPending, PaymentConfirmed, PaymentPaid, PaymentPartial:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, raw)
	}
}

// allowedTransitions lists the statuses back-office staff may move a booking to.
var allowedTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentConfirmed, PaymentPaid, PaymentPartial},
	PaymentConfirmed: {PaymentPaid, PaymentPartial},
	PaymentPartial:   {PaymentPaid},
}

type PaymentPlan string

const (
	PlanArrival     PaymentPlan = "arrival"
	PlanFull        PaymentPlan = "full"
	PlanDeposit     PaymentPlan = "deposit"
	PlanInstalments PaymentPlan = "lipa_mdogo_mdogo"
)

func ParsePaymentPlan(raw string) (PaymentPlan, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PlanArrival, nil
	}
	switch p := PaymentPlan(raw); p {
	case PlanArrival, PlanFull, PlanDeposit, PlanInstalments:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentPlan, raw)
	}
}

type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	UserID    string
	Start     daterange.Day
	// End is zero for single-day bookings (tours, volunteer slots).
	End                 daterange.Day
	Guests              int
	PaymentStatus       PaymentStatus
	PaymentPlan         PaymentPlan
	Total               money.Money
	VolunteerMotivation string
	VolunteerDuration   string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	List(ctx context.Context) ([]*Booking, error)
}

type CreateParams struct {
	ID                  BookingID
	ListingID           listings.ListingID
	UserID              string
	Start               daterange.Day
	End                 daterange.Day
	Guests              int
	PaymentPlan         PaymentPlan
	Total               money.Money
	VolunteerMotivation string
	VolunteerDuration   string
	CreatedAt           time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if params.Start.IsZero() {
		return nil, ErrStartRequired
	}
	if !params.End.IsZero() && !params.End.After(params.Start) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidRange, params.Start, params.End)
	}
	if params.Total.Amount < 0 {
		return nil, ErrNegativeTotal
	}
	plan := params.PaymentPlan
	if plan == "" {
		plan = PlanArrival
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:                  params.ID,
		ListingID:           params.ListingID,
		UserID:              params.UserID,
		Start:               params.Start,
		End:                 params.End,
		Guests:              params.Guests,
		PaymentStatus:       PaymentPending,
		PaymentPlan:         plan,
		Total:               params.Total,
		VolunteerMotivation: strings.TrimSpace(params.VolunteerMotivation),
		VolunteerDuration:   strings.TrimSpace(params.VolunteerDuration),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	b.Record(BookingRequested{
		BookingID: b.ID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		Start:     b.Start,
		End:       b.End,
		Guests:    b.Guests,
		Total:     b.Total,
		At:        now,
	})
	return b, nil
}

func (b *Booking) IsRange() bool {
	return !b.End.IsZero()
}

// Span returns the closed interval of days the booking occupies. Data read
// back from storage is not trusted: an end before the start is an error.
func (b *Booking) Span() (daterange.Span, error) {
	if b.End.IsZero() {
		return daterange.NewSpan(b.Start, b.Start)
	}
	return daterange.NewSpan(b.Start, b.End)
}

func (b *Booking) UpdatePaymentStatus(next PaymentStatus, now time.Time) error {
	if b.PaymentStatus == next {
		return nil
	}
	allowed := false
	for _, candidate := range allowedTransitions[b.PaymentStatus] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.PaymentStatus, next)
	}
	prev := b.PaymentStatus
	b.PaymentStatus = next
	b.UpdatedAt = now.UTC()
	b.Record(PaymentStatusChanged{BookingID: b.ID, From: prev, To: next, At: b.UpdatedAt})
	return nil
}
