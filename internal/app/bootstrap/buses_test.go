package bootstrap_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/app/bootstrap"
	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	availabilityapp "tripdesk/internal/app/handlers/availability"
	bookingapp "tripdesk/internal/app/handlers/booking"
	listingapp "tripdesk/internal/app/handlers/listings"
	meapp "tripdesk/internal/app/handlers/me"
	pricingapp "tripdesk/internal/app/handlers/pricing"
	reviewapp "tripdesk/internal/app/handlers/reviews"
	"tripdesk/internal/app/queries"
	domainauth "tripdesk/internal/domain/auth"
	domainavailability "tripdesk/internal/domain/availability"
	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	domainpricing "tripdesk/internal/domain/pricing"
	domainreviews "tripdesk/internal/domain/reviews"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
	"tripdesk/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	buses  bootstrap.Buses
	store  *memory.Store
	outbox *memory.Outbox
}

func newHarness(t *testing.T, seed ...*domainlistings.Listing) harness {
	t.Helper()
	store := memory.NewStore()
	store.Seed(seed...)
	box := memory.NewOutbox()
	seq := 0
	buses := bootstrap.NewBuses(bootstrap.Deps{
		UoWFactory:  memory.NewFactory(store),
		Outbox:      box,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Clock:       func() time.Time { return fixedNow },
		Location:    time.UTC,
		EventSource: "test",
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	return harness{buses: buses, store: store, outbox: box}
}

func listing(t *testing.T, id string, category domainlistings.Category, cents int64, published bool, days ...string) *domainlistings.Listing {
	t.Helper()
	var availability []daterange.Day
	for _, d := range days {
		availability = append(availability, daterange.MustParse(d))
	}
	l, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(id),
		Title:        "Listing " + id,
		Category:     category,
		Price:        money.Money{Amount: cents, Currency: money.BaseCurrency},
		Availability: availability,
		Now:          fixedNow,
	})
	require.NoError(t, err)
	if published {
		require.NoError(t, l.Publish(fixedNow))
	}
	l.ClearEvents()
	return l
}

func userCtx(id string) context.Context {
	return domainauth.ContextWithSession(context.Background(), domainauth.Session{UserID: id, Role: domainauth.RoleUser})
}

func adminCtx() context.Context {
	return domainauth.ContextWithSession(context.Background(), domainauth.Session{UserID: "admin-1", Role: domainauth.RoleAdmin})
}

func requestStay(ctx context.Context, h harness, start, end, key string) (*dto.RequestBookingResult, error) {
	cmd := bookingapp.RequestBookingCommand{
		UserID:          "guest-1",
		ListingID:       "stay-1",
		Start:           daterange.MustParse(start),
		Guests:          2,
		IdempotencyKeyV: key,
	}
	if end != "" {
		cmd.End = daterange.MustParse(end)
	}
	return commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](ctx, h.buses.Commands, cmd)
}

func TestRequestBookingPricesAndRecordsEvent(t *testing.T) {
	h := newHarness(t, listing(t, "stay-1", domainlistings.CategoryStay, 10000, true))

	res, err := requestStay(userCtx("guest-1"), h, "2026-03-12", "2026-03-15", "")
	require.NoError(t, err)
	assert.Equal(t, "pending", res.PaymentStatus)
	assert.Equal(t, "arrival", res.PaymentPlan)
	assert.Equal(t, int64(60000), res.Total.Amount)
	assert.Equal(t, "USD", res.Total.Currency)

	records := h.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "booking.requested", records[0].Name)
	assert.Equal(t, res.BookingID, records[0].Aggregate)
}

func TestRequestBookingRejectsBookedDays(t *testing.T) {
	h := newHarness(t, listing(t, "stay-1", domainlistings.CategoryStay, 10000, true))
	_, err := requestStay(userCtx("guest-1"), h, "2026-03-12", "2026-03-15", "")
	require.NoError(t, err)

	_, err = requestStay(userCtx("guest-2"), h, "2026-03-15", "2026-03-17", "")
	assert.ErrorIs(t, err, domainavailability.ErrDayNotSelectable, "checkout day stays occupied")

	_, err = requestStay(userCtx("guest-2"), h, "2026-03-11", "2026-03-18", "")
	assert.ErrorIs(t, err, domainavailability.ErrRangeIncludesBooked)

	_, err = requestStay(userCtx("guest-2"), h, "2026-03-09", "2026-03-11", "")
	assert.ErrorIs(t, err, domainavailability.ErrDayNotSelectable, "past start")

	_, err = requestStay(userCtx("guest-2"), h, "2026-03-16", "", "")
	assert.ErrorIs(t, err, domainavailability.ErrSelectionIncomplete)

	assert.Len(t, h.outbox.Records(), 1, "failed requests emit nothing")
}

func TestRequestBookingNeedsSessionAndPublishedListing(t *testing.T) {
	h := newHarness(t,
		listing(t, "stay-1", domainlistings.CategoryStay, 10000, true),
		listing(t, "draft-1", domainlistings.CategoryTour, 5000, false),
	)

	_, err := requestStay(context.Background(), h, "2026-03-12", "2026-03-15", "")
	assert.ErrorIs(t, err, domainauth.ErrUnauthorized)

	_, err = commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](userCtx("guest-1"), h.buses.Commands, bookingapp.RequestBookingCommand{
		UserID: "guest-1", ListingID: "draft-1", Start: daterange.MustParse("2026-03-12"), Guests: 1,
	})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotPublic)

	_, err = commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](userCtx("guest-1"), h.buses.Commands, bookingapp.RequestBookingCommand{
		UserID: "guest-1", ListingID: "stay-1", Start: daterange.MustParse("2026-03-12"), Guests: 0,
	})
	assert.ErrorIs(t, err, domainbooking.ErrInvalidGuests)
}

func TestRequestBookingRejectsUnpayableTotals(t *testing.T) {
	h := newHarness(t,
		listing(t, "stay-1", domainlistings.CategoryStay, 10000, true),
		listing(t, "palace-1", domainlistings.CategoryStay, math.MaxInt64/2, true),
	)

	_, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](userCtx("guest-1"), h.buses.Commands, bookingapp.RequestBookingCommand{
		UserID: "guest-1", ListingID: "stay-1",
		Start: daterange.MustParse("2026-03-12"), End: daterange.MustParse("2026-03-16"),
		Guests: 1 << 61,
	})
	assert.ErrorIs(t, err, domainpricing.ErrTooManyGuests)

	_, err = requestStay(userCtx("guest-1"), h, "2026-03-12", "2026-03-16", "")
	require.NoError(t, err, "the same stay with a normal party still books")

	_, err = commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](userCtx("guest-1"), h.buses.Commands, bookingapp.RequestBookingCommand{
		UserID: "guest-1", ListingID: "palace-1",
		Start: daterange.MustParse("2026-03-12"), End: daterange.MustParse("2026-03-16"),
		Guests: 2,
	})
	assert.ErrorIs(t, err, money.ErrAmountOverflow)

	mine, err := queries.Ask[meapp.ListUserBookingsQuery, dto.BookingCollection](userCtx("guest-1"), h.buses.Queries, meapp.ListUserBookingsQuery{UserID: "guest-1"})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1, "rejected requests store nothing")
	assert.Len(t, h.outbox.Records(), 1)
}

func TestRequestBookingIsIdempotentPerCaller(t *testing.T) {
	h := newHarness(t, listing(t, "stay-1", domainlistings.CategoryStay, 10000, true))
	ctx := userCtx("guest-1")

	first, err := requestStay(ctx, h, "2026-03-12", "2026-03-15", "key-1")
	require.NoError(t, err)
	second, err := requestStay(ctx, h, "2026-03-12", "2026-03-15", "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, second.BookingID)

	mine, err := queries.Ask[meapp.ListUserBookingsQuery, dto.BookingCollection](ctx, h.buses.Queries, meapp.ListUserBookingsQuery{UserID: "guest-1"})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)
	assert.Len(t, h.outbox.Records(), 1)
}

func TestSingleDateListingsBookOneDay(t *testing.T) {
	h := newHarness(t, listing(t, "tour-1", domainlistings.CategoryTour, 25000, true, "2026-03-14", "2026-03-21"))
	ctx := userCtx("guest-1")
	book := func(day string) error {
		_, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.RequestBookingResult](ctx, h.buses.Commands, bookingapp.RequestBookingCommand{
			UserID: "guest-1", ListingID: "tour-1", Start: daterange.MustParse(day), Guests: 3,
		})
		return err
	}

	assert.ErrorIs(t, book("2026-03-15"), domainavailability.ErrDayNotSelectable, "not whitelisted")
	require.NoError(t, book("2026-03-14"))
	assert.ErrorIs(t, book("2026-03-14"), domainavailability.ErrDayNotSelectable, "already booked")

	records := h.outbox.Records()
	require.Len(t, records, 1)
	assert.Contains(t, string(records[0].Payload), `"Amount":75000`)
}

func TestCalendarReflectsBookings(t *testing.T) {
	h := newHarness(t, listing(t, "stay-1", domainlistings.CategoryStay, 10000, true))
	_, err := requestStay(userCtx("guest-1"), h, "2026-03-12", "2026-03-13", "")
	require.NoError(t, err)

	cal, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](context.Background(), h.buses.Queries, availabilityapp.GetCalendarQuery{
		ListingID: "stay-1",
		Start:     daterange.MustParse("2026-03-16"),
		End:       daterange.MustParse("2026-03-18"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03", cal.Month)
	assert.Equal(t, "2026-03-10", cal.Today)
	assert.True(t, cal.RangeMode)
	assert.Equal(t, []string{"2026-03-12", "2026-03-13"}, cal.BookedDays)
	assert.Equal(t, 2, cal.Selection.Nights)
	assert.Empty(t, cal.SelectionError)

	tags := map[string][]string{}
	for _, d := range cal.Days {
		if d.Date != "" {
			tags[d.Date] = d.Tags
		}
	}
	assert.Contains(t, tags["2026-03-09"], "past")
	assert.Contains(t, tags["2026-03-10"], "today")
	assert.Contains(t, tags["2026-03-12"], "booked")
	assert.Contains(t, tags["2026-03-16"], "selected")
	assert.Contains(t, tags["2026-03-17"], "in-range")
	assert.Contains(t, tags["2026-03-18"], "selected")
}

func TestQuoteUsesNightsForStays(t *testing.T) {
	h := newHarness(t, listing(t, "stay-1", domainlistings.CategoryStay, 10000, true))
	q, err := queries.Ask[pricingapp.GetQuoteQuery, dto.Quote](context.Background(), h.buses.Queries, pricingapp.GetQuoteQuery{
		ListingID: "stay-1",
		Start:     daterange.MustParse("2026-04-01"),
		End:       daterange.MustParse("2026-04-05"),
		Guests:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, "night", q.Unit)
	assert.Equal(t, 4, q.Nights)
	assert.Equal(t, int64(80000), q.Total.Amount)
}

func TestAdminToggleAvailability(t *testing.T) {
	h := newHarness(t, listing(t, "tour-1", domainlistings.CategoryTour, 25000, true))
	toggle := func(ctx context.Context, day string) (*dto.AvailabilityToggle, error) {
		return commands.Dispatch[listingapp.ToggleAvailabilityCommand, *dto.AvailabilityToggle](ctx, h.buses.Commands, listingapp.ToggleAvailabilityCommand{
			ListingID: "tour-1", Date: daterange.MustParse(day),
		})
	}

	_, err := toggle(userCtx("guest-1"), "2026-03-20")
	assert.ErrorIs(t, err, domainauth.ErrForbidden)

	res, err := toggle(adminCtx(), "2026-03-22")
	require.NoError(t, err)
	assert.True(t, res.Available)
	res, err = toggle(adminCtx(), "2026-03-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-20", "2026-03-22"}, res.Availability)

	res, err = toggle(adminCtx(), "2026-03-22")
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []string{"2026-03-20"}, res.Availability)

	_, err = toggle(adminCtx(), "2026-03-01")
	assert.ErrorIs(t, err, domainlistings.ErrPastDate)
}

func TestAdminCreateAndPublishListing(t *testing.T) {
	h := newHarness(t)
	created, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](adminCtx(), h.buses.Commands, listingapp.CreateListingCommand{
		Title:      "Lamu Dhow Loft",
		Category:   "stay",
		PriceCents: 9000,
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", created.Status)
	assert.True(t, created.RangeMode)

	_, err = queries.Ask[listingapp.GetListingQuery, dto.Listing](context.Background(), h.buses.Queries, listingapp.GetListingQuery{ListingID: created.ID})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotPublic)

	published, err := commands.Dispatch[listingapp.PublishListingCommand, *dto.Listing](adminCtx(), h.buses.Commands, listingapp.PublishListingCommand{ListingID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "published", published.Status)

	catalog, err := queries.Ask[listingapp.ListListingsQuery, dto.ListingCollection](context.Background(), h.buses.Queries, listingapp.ListListingsQuery{Category: "stay"})
	require.NoError(t, err)
	require.Len(t, catalog.Items, 1)
	assert.Equal(t, created.ID, catalog.Items[0].ID)

	names := []string{}
	for _, rec := range h.outbox.Records() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"listing.created", "listing.published"}, names)
}

func TestAdminPaymentStatusFlow(t *testing.T) {
	h := newHarness(t, listing(t, "stay-1", domainlistings.CategoryStay, 10000, true))
	booked, err := requestStay(userCtx("guest-1"), h, "2026-03-12", "2026-03-15", "")
	require.NoError(t, err)

	update := func(ctx context.Context, status string) (*dto.PaymentStatusResult, error) {
		return commands.Dispatch[bookingapp.UpdatePaymentStatusCommand, *dto.PaymentStatusResult](ctx, h.buses.Commands, bookingapp.UpdatePaymentStatusCommand{
			BookingID: booked.BookingID, Status: status,
		})
	}

	_, err = update(userCtx("guest-1"), "paid")
	assert.ErrorIs(t, err, domainauth.ErrForbidden)

	res, err := update(adminCtx(), "paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", res.PaymentStatus)

	_, err = update(adminCtx(), "pending")
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)

	_, err = update(adminCtx(), "refunded")
	assert.ErrorIs(t, err, domainbooking.ErrInvalidPaymentStatus)

	paid, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingCollection](adminCtx(), h.buses.Queries, bookingapp.ListBookingsQuery{PaymentStatus: "paid"})
	require.NoError(t, err)
	require.Len(t, paid.Items, 1)
	assert.Equal(t, booked.BookingID, paid.Items[0].ID)
	assert.Equal(t, "stay-1", paid.Items[0].Listing.ID)
}

func TestUsersCannotReadOthersBookings(t *testing.T) {
	h := newHarness(t)
	_, err := queries.Ask[meapp.ListUserBookingsQuery, dto.BookingCollection](userCtx("guest-1"), h.buses.Queries, meapp.ListUserBookingsQuery{UserID: "guest-2"})
	assert.ErrorIs(t, err, domainauth.ErrForbidden)

	_, err = queries.Ask[meapp.ListUserBookingsQuery, dto.BookingCollection](adminCtx(), h.buses.Queries, meapp.ListUserBookingsQuery{UserID: "guest-2"})
	assert.NoError(t, err)
}

func submitReview(ctx context.Context, h harness, listingID string, rating int) (*dto.Review, error) {
	session, _ := domainauth.FromContext(ctx)
	cmd := reviewapp.SubmitReviewCommand{
		UserID:     session.UserID,
		AuthorName: session.FullName,
		ListingID:  listingID,
		Rating:     rating,
		Comment:    "Great stay",
	}
	return commands.Dispatch[reviewapp.SubmitReviewCommand, *dto.Review](ctx, h.buses.Commands, cmd)
}

func listingReviews(t *testing.T, h harness, listingID string) dto.ReviewCollection {
	t.Helper()
	res, err := queries.Ask[reviewapp.ListListingReviewsQuery, dto.ReviewCollection](context.Background(), h.buses.Queries,
		reviewapp.ListListingReviewsQuery{ListingID: listingID})
	require.NoError(t, err)
	return res
}

func moderate(ctx context.Context, h harness, reviewID, status string) (*dto.Review, error) {
	return commands.Dispatch[reviewapp.ModerateReviewCommand, *dto.Review](ctx, h.buses.Commands,
		reviewapp.ModerateReviewCommand{ReviewID: reviewID, Status: status})
}

func TestReviewModerationFlow(t *testing.T) {
	h := newHarness(t,
		listing(t, "stay-1", domainlistings.CategoryStay, 10000, true),
		listing(t, "draft-1", domainlistings.CategoryStay, 10000, false),
	)

	_, err := submitReview(context.Background(), h, "stay-1", 5)
	assert.ErrorIs(t, err, domainauth.ErrUnauthorized)
	_, err = submitReview(userCtx("guest-1"), h, "stay-1", 6)
	assert.ErrorIs(t, err, domainreviews.ErrInvalidRating)
	_, err = submitReview(userCtx("guest-1"), h, "draft-1", 4)
	assert.ErrorIs(t, err, domainlistings.ErrListingNotPublic)

	first, err := submitReview(userCtx("guest-1"), h, "stay-1", 5)
	require.NoError(t, err)
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, "Anonymous", first.AuthorName)
	assert.Zero(t, listingReviews(t, h, "stay-1").Count, "pending reviews stay hidden")

	_, err = submitReview(userCtx("guest-1"), h, "stay-1", 3)
	assert.ErrorIs(t, err, reviewapp.ErrDuplicateReview)

	_, err = moderate(userCtx("guest-1"), h, first.ID, "approved")
	assert.ErrorIs(t, err, domainauth.ErrForbidden)
	_, err = moderate(adminCtx(), h, first.ID, "rejected")
	assert.ErrorIs(t, err, domainreviews.ErrInvalidStatus)

	approved, err := moderate(adminCtx(), h, first.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	second, err := submitReview(userCtx("guest-2"), h, "stay-1", 4)
	require.NoError(t, err)
	_, err = moderate(adminCtx(), h, second.ID, "approved")
	require.NoError(t, err)

	public := listingReviews(t, h, "stay-1")
	assert.Equal(t, 2, public.Count)
	assert.InDelta(t, 4.5, public.AverageRating, 1e-9)
	for _, item := range public.Items {
		assert.Empty(t, item.UserID, "storefront hides author ids")
	}

	pending, err := queries.Ask[reviewapp.ListReviewsQuery, dto.ReviewCollection](adminCtx(), h.buses.Queries,
		reviewapp.ListReviewsQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, pending.Items)
	all, err := queries.Ask[reviewapp.ListReviewsQuery, dto.ReviewCollection](adminCtx(), h.buses.Queries, reviewapp.ListReviewsQuery{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "Listing stay-1", all.Items[0].ListingTitle)
	assert.NotEmpty(t, all.Items[0].UserID)
	_, err = queries.Ask[reviewapp.ListReviewsQuery, dto.ReviewCollection](userCtx("guest-1"), h.buses.Queries, reviewapp.ListReviewsQuery{})
	assert.ErrorIs(t, err, domainauth.ErrForbidden)

	removed, err := commands.Dispatch[reviewapp.DeleteReviewCommand, *dto.ReviewRemoval](adminCtx(), h.buses.Commands,
		reviewapp.DeleteReviewCommand{ReviewID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, removed.ReviewID)
	_, err = commands.Dispatch[reviewapp.DeleteReviewCommand, *dto.ReviewRemoval](adminCtx(), h.buses.Commands,
		reviewapp.DeleteReviewCommand{ReviewID: first.ID})
	assert.ErrorIs(t, err, domainreviews.ErrReviewNotFound)

	public = listingReviews(t, h, "stay-1")
	assert.Equal(t, 1, public.Count)
	assert.InDelta(t, 4.0, public.AverageRating, 1e-9)

	var names []string
	for _, rec := range h.outbox.Records() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{
		"review.submitted",
		"review.status_changed",
		"review.submitted",
		"review.status_changed",
		"review.deleted",
	}, names)
}
