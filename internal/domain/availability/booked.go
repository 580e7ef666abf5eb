package availability

import (
	"errors"
	"fmt"
	"sort"

	"tripdesk/internal/domain/booking"
	"tripdesk/internal/domain/shared/daterange"
)

var ErrBookingRangeInverted = errors.New("availability: booking ends before it starts")

// BookedDateSet holds every calendar day occupied by a listing's bookings.
type BookedDateSet map[daterange.Day]struct{}

// BuildBookedDateSet expands bookings into the days they occupy. A range
// booking occupies every day from start through end inclusive. The result
// does not depend on the order of bookings.
func BuildBookedDateSet(bookings []*booking.Booking) (BookedDateSet, error) {
	set := make(BookedDateSet)
	for _, b := range bookings {
		if b == nil {
			continue
		}
		span, err := b.Span()
		if err != nil {
			return nil, fmt.Errorf("%w: booking %s: %v", ErrBookingRangeInverted, b.ID, err)
		}
		span.Each(func(d daterange.Day) bool {
			set[d] = struct{}{}
			return true
		})
	}
	return set, nil
}

func (s BookedDateSet) Has(d daterange.Day) bool {
	_, ok := s[d]
	return ok
}

func (s BookedDateSet) Len() int { return len(s) }

// FirstIn returns the earliest booked day inside span.
func (s BookedDateSet) FirstIn(span daterange.Span) (daterange.Day, bool) {
	var hit daterange.Day
	found := false
	span.Each(func(d daterange.Day) bool {
		if s.Has(d) {
			hit, found = d, true
			return false
		}
		return true
	})
	return hit, found
}

// Sorted lists the booked days in ascending order.
func (s BookedDateSet) Sorted() []daterange.Day {
	out := make([]daterange.Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s BookedDateSet) Strings() []string {
	days := s.Sorted()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
