package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/events"
)

// ErrConcurrentUpdate is returned when an aggregate was saved by someone else
// after it was loaded.
var ErrConcurrentUpdate = errors.New("memory: concurrent update detected")

// Store keeps committed aggregates. They are copied on the way in and out so
// callers never share state with the store.
type Store struct {
	mu          sync.RWMutex
	listings    map[domainlistings.ListingID]*domainlistings.Listing
	bookings    map[domainbooking.BookingID]*domainbooking.Booking
	order       []domainbooking.BookingID
	reviews     map[domainreviews.ReviewID]*domainreviews.Review
	reviewOrder []domainreviews.ReviewID
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
		reviews:  make(map[domainreviews.ReviewID]*domainreviews.Review),
	}
}

// Seed stores listings directly, bypassing units of work. Used for fixtures.
func (s *Store) Seed(items ...*domainlistings.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range items {
		s.listings[l.ID] = cloneListing(l)
	}
}

func (s *Store) listing(id domainlistings.ListingID) (*domainlistings.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, false
	}
	return cloneListing(l), true
}

func (s *Store) booking(id domainbooking.BookingID) (*domainbooking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	return cloneBooking(b), true
}

func (s *Store) allListings() []*domainlistings.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, cloneListing(l))
	}
	return out
}

// allBookings returns bookings in insertion order.
func (s *Store) allBookings() []*domainbooking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneBooking(s.bookings[id]))
	}
	return out
}

func (s *Store) review(id domainreviews.ReviewID) (*domainreviews.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, false
	}
	return cloneReview(r), true
}

// allReviews returns reviews in insertion order.
func (s *Store) allReviews() []*domainreviews.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainreviews.Review, 0, len(s.reviewOrder))
	for _, id := range s.reviewOrder {
		out = append(out, cloneReview(s.reviews[id]))
	}
	return out
}

// changeset is everything one unit wrote.
type changeset struct {
	listings       []*domainlistings.Listing
	bookings       []*domainbooking.Booking
	reviews        []*domainreviews.Review
	removedReviews []*domainreviews.Review
}

// apply writes a changeset after checking every version. Nothing is written
// when any check fails.
func (s *Store) apply(c changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range c.listings {
		if current, ok := s.listings[l.ID]; ok && current.Version != l.Version {
			return fmt.Errorf("%w: listing %s", ErrConcurrentUpdate, l.ID)
		}
	}
	for _, b := range c.bookings {
		if current, ok := s.bookings[b.ID]; ok && current.Version != b.Version {
			return fmt.Errorf("%w: booking %s", ErrConcurrentUpdate, b.ID)
		}
	}
	for _, r := range append(append([]*domainreviews.Review(nil), c.reviews...), c.removedReviews...) {
		if current, ok := s.reviews[r.ID]; ok && current.Version != r.Version {
			return fmt.Errorf("%w: review %s", ErrConcurrentUpdate, r.ID)
		}
	}
	for _, l := range c.listings {
		stored := cloneListing(l)
		stored.Version++
		s.listings[l.ID] = stored
	}
	for _, b := range c.bookings {
		if _, ok := s.bookings[b.ID]; !ok {
			s.order = append(s.order, b.ID)
		}
		stored := cloneBooking(b)
		stored.Version++
		s.bookings[b.ID] = stored
	}
	for _, r := range c.reviews {
		if _, ok := s.reviews[r.ID]; !ok {
			s.reviewOrder = append(s.reviewOrder, r.ID)
		}
		stored := cloneReview(r)
		stored.Version++
		s.reviews[r.ID] = stored
	}
	for _, r := range c.removedReviews {
		if _, ok := s.reviews[r.ID]; !ok {
			continue
		}
		delete(s.reviews, r.ID)
		for i, id := range s.reviewOrder {
			if id == r.ID {
				s.reviewOrder = append(s.reviewOrder[:i], s.reviewOrder[i+1:]...)
				break
			}
		}
	}
	return nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	c := *l
	c.EventRecorder = events.EventRecorder{}
	c.Availability = append([]daterange.Day(nil), l.Availability...)
	return &c
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.EventRecorder = events.EventRecorder{}
	return &c
}

func cloneReview(r *domainreviews.Review) *domainreviews.Review {
	c := *r
	c.EventRecorder = events.EventRecorder{}
	return &c
}

// Ping satisfies readiness checks.
func (s *Store) Ping(context.Context) error { return nil }
