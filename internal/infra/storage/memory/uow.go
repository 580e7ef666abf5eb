package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tripdesk/internal/app/uow"
	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
)

var ErrUnitClosed = errors.New("memory: unit of work already finished")

// Factory opens units over a Store. Writable units are serialised: a second
// writer waits in Begin until the first commits or rolls back, which keeps
// availability checks and booking inserts atomic.
type Factory struct {
	Store *Store

	writer sync.Mutex
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f == nil || f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	unit := &Unit{
		store:    f.Store,
		readOnly: opts.ReadOnly,
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
		reviews:  make(map[domainreviews.ReviewID]*domainreviews.Review),
		removed:  make(map[domainreviews.ReviewID]*domainreviews.Review),
	}
	if !opts.ReadOnly {
		f.writer.Lock()
		unit.release = f.writer.Unlock
	}
	return unit, nil
}

// Unit stages writes and applies them to the store on Commit.
type Unit struct {
	store    *Store
	readOnly bool
	release  func()
	done     bool

	mu           sync.Mutex
	listings     map[domainlistings.ListingID]*domainlistings.Listing
	bookings     map[domainbooking.BookingID]*domainbooking.Booking
	bookingOrder []domainbooking.BookingID
	reviews      map[domainreviews.ReviewID]*domainreviews.Review
	reviewOrder  []domainreviews.ReviewID
	removed      map[domainreviews.ReviewID]*domainreviews.Review
	onCommit     []func()
}

func (u *Unit) Listings() domainlistings.Repository { return listingRepository{u} }
func (u *Unit) Bookings() domainbooking.Repository  { return bookingRepository{u} }
func (u *Unit) Reviews() domainreviews.Repository   { return reviewRepository{u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	defer u.finish()
	if u.readOnly {
		return nil
	}
	var changes changeset
	for _, l := range u.listings {
		changes.listings = append(changes.listings, l)
	}
	for _, id := range u.bookingOrder {
		changes.bookings = append(changes.bookings, u.bookings[id])
	}
	for _, id := range u.reviewOrder {
		if r, ok := u.reviews[id]; ok {
			changes.reviews = append(changes.reviews, r)
		}
	}
	for _, r := range u.removed {
		changes.removedReviews = append(changes.removedReviews, r)
	}
	if err := u.store.apply(changes); err != nil {
		return err
	}
	// Hooks run before the writer lock is released so queued side effects
	// keep commit order.
	for _, fn := range u.onCommit {
		fn()
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return nil
	}
	u.finish()
	return nil
}

func (u *Unit) finish() {
	u.done = true
	u.listings = nil
	u.bookings = nil
	u.bookingOrder = nil
	u.reviews = nil
	u.reviewOrder = nil
	u.removed = nil
	u.onCommit = nil
	if u.release != nil {
		u.release()
		u.release = nil
	}
}

func (u *Unit) stage(fn func() error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return fmt.Errorf("memory: write in read-only unit of work")
	}
	return fn()
}

// afterCommit registers fn to run once the staged writes are applied. It is
// dropped on rollback or when the version check fails.
func (u *Unit) afterCommit(fn func()) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	u.onCommit = append(u.onCommit, fn)
	return nil
}

type listingRepository struct{ u *Unit }

func (r listingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.u.mu.Lock()
	staged, ok := r.u.listings[id]
	r.u.mu.Unlock()
	if ok {
		return cloneListing(staged), nil
	}
	if l, ok := r.u.store.listing(id); ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %s", domainlistings.ErrListingNotFound, id)
}

func (r listingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	return r.u.stage(func() error {
		r.u.listings[listing.ID] = cloneListing(listing)
		return nil
	})
}

func (r listingRepository) List(ctx context.Context, filter domainlistings.Filter) ([]*domainlistings.Listing, error) {
	merged := make(map[domainlistings.ListingID]*domainlistings.Listing)
	for _, l := range r.u.store.allListings() {
		merged[l.ID] = l
	}
	r.u.mu.Lock()
	for id, l := range r.u.listings {
		merged[id] = cloneListing(l)
	}
	r.u.mu.Unlock()

	out := make([]*domainlistings.Listing, 0, len(merged))
	for _, l := range merged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if filter.Match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

type bookingRepository struct{ u *Unit }

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.u.mu.Lock()
	staged, ok := r.u.bookings[id]
	r.u.mu.Unlock()
	if ok {
		return cloneBooking(staged), nil
	}
	if b, ok := r.u.store.booking(id); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", domainbooking.ErrBookingNotFound, id)
}

func (r bookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	return r.u.stage(func() error {
		if _, ok := r.u.bookings[booking.ID]; !ok {
			r.u.bookingOrder = append(r.u.bookingOrder, booking.ID)
		}
		r.u.bookings[booking.ID] = cloneBooking(booking)
		return nil
	})
}

func (r bookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.ListingID == listingID })
}

func (r bookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.UserID == userID })
}

func (r bookingRepository) List(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.filter(func(*domainbooking.Booking) bool { return true })
}

// filter merges committed and staged bookings, staged versions winning.
func (r bookingRepository) filter(keep func(*domainbooking.Booking) bool) ([]*domainbooking.Booking, error) {
	committed := r.u.store.allBookings()
	r.u.mu.Lock()
	defer r.u.mu.Unlock()

	out := make([]*domainbooking.Booking, 0, len(committed))
	seen := make(map[domainbooking.BookingID]struct{}, len(committed))
	for _, b := range committed {
		seen[b.ID] = struct{}{}
		if staged, ok := r.u.bookings[b.ID]; ok {
			b = cloneBooking(staged)
		}
		if keep(b) {
			out = append(out, b)
		}
	}
	for _, id := range r.u.bookingOrder {
		if _, ok := seen[id]; ok {
			continue
		}
		if b := r.u.bookings[id]; keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

type reviewRepository struct{ u *Unit }

func (r reviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.u.mu.Lock()
	staged, ok := r.u.reviews[id]
	_, gone := r.u.removed[id]
	r.u.mu.Unlock()
	if gone {
		return nil, fmt.Errorf("%w: %s", domainreviews.ErrReviewNotFound, id)
	}
	if ok {
		return cloneReview(staged), nil
	}
	if rv, ok := r.u.store.review(id); ok {
		return rv, nil
	}
	return nil, fmt.Errorf("%w: %s", domainreviews.ErrReviewNotFound, id)
}

func (r reviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	return r.u.stage(func() error {
		if _, ok := r.u.reviews[review.ID]; !ok {
			r.u.reviewOrder = append(r.u.reviewOrder, review.ID)
		}
		delete(r.u.removed, review.ID)
		r.u.reviews[review.ID] = cloneReview(review)
		return nil
	})
}

func (r reviewRepository) Delete(ctx context.Context, review *domainreviews.Review) error {
	return r.u.stage(func() error {
		delete(r.u.reviews, review.ID)
		r.u.removed[review.ID] = cloneReview(review)
		return nil
	})
}

func (r reviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	return r.filter(func(rv *domainreviews.Review) bool { return rv.ListingID == listingID })
}

func (r reviewRepository) List(ctx context.Context) ([]*domainreviews.Review, error) {
	return r.filter(func(*domainreviews.Review) bool { return true })
}

// filter merges committed and staged reviews in insertion order, dropping
// the ones deleted in this unit.
func (r reviewRepository) filter(keep func(*domainreviews.Review) bool) ([]*domainreviews.Review, error) {
	committed := r.u.store.allReviews()
	r.u.mu.Lock()
	defer r.u.mu.Unlock()

	out := make([]*domainreviews.Review, 0, len(committed))
	seen := make(map[domainreviews.ReviewID]struct{}, len(committed))
	for _, rv := range committed {
		seen[rv.ID] = struct{}{}
		if _, gone := r.u.removed[rv.ID]; gone {
			continue
		}
		if staged, ok := r.u.reviews[rv.ID]; ok {
			rv = cloneReview(staged)
		}
		if keep(rv) {
			out = append(out, rv)
		}
	}
	for _, id := range r.u.reviewOrder {
		if _, ok := seen[id]; ok {
			continue
		}
		rv, ok := r.u.reviews[id]
		if ok && keep(rv) {
			out = append(out, cloneReview(rv))
		}
	}
	return out, nil
}

var _ uow.UoWFactory = (*Factory)(nil)
var _ uow.UnitOfWork = (*Unit)(nil)
