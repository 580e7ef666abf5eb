package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	domainbooking "tripdesk/internal/domain/booking"
	domainreviews "tripdesk/internal/domain/reviews"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

func TestSingleDayBookingOmitsEnd(t *testing.T) {
	b := &domainbooking.Booking{
		ID:        "bk-1",
		ListingID: "tour-1",
		UserID:    "u1",
		Start:     daterange.MustParse("2027-01-05"),
		Guests:    3,
		Total:     money.Money{Amount: 75000, Currency: "USD"},
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	raw, err := bson.Marshal(newBookingDocument(b))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "end")
	assert.Equal(t, "2027-01-05", fields["start"])

	var doc bookingDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	back, err := doc.toAggregate()
	require.NoError(t, err)
	assert.True(t, back.End.IsZero())
	assert.True(t, b.CreatedAt.Equal(back.CreatedAt))
}

func TestInvertedBookingRangeIsLoaded(t *testing.T) {
	doc := bookingDocument{ID: "bk-2", Start: "2026-04-10", End: "2026-04-08"}
	b, err := doc.toAggregate()
	require.NoError(t, err)
	_, err = b.Span()
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestListingDocumentRejectsBadDays(t *testing.T) {
	_, err := listingDocument{ID: "stay-1", Availability: []string{"2026-02-30"}}.toAggregate()
	assert.Error(t, err)

	l, err := listingDocument{ID: "stay-1", Availability: []string{"2026-03-01", "2026-03-02"}}.toAggregate()
	require.NoError(t, err)
	assert.Len(t, l.Availability, 2)
}

func TestReviewDocumentRoundTrip(t *testing.T) {
	r := &domainreviews.Review{
		ID:        "rv-1",
		ListingID: "stay-1",
		UserID:    "u1",
		Rating:    5,
		Status:    domainreviews.StatusApproved,
		CreatedAt: time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
		Version:   2,
	}
	raw, err := bson.Marshal(newReviewDocument(r))
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "comment")
	assert.NotContains(t, fields, "author_name")

	var doc reviewDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	back := doc.toAggregate()
	assert.Equal(t, r.ID, back.ID)
	assert.True(t, back.IsApproved())
	assert.Equal(t, int64(2), back.Version)
	assert.True(t, r.CreatedAt.Equal(back.CreatedAt))
}

func TestReviewDocumentWithoutStatusIsPending(t *testing.T) {
	back := reviewDocument{ID: "rv-2", Rating: 3}.toAggregate()
	assert.Equal(t, domainreviews.StatusPending, back.Status)
}
