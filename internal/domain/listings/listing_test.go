package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

func newStay(t *testing.T) *Listing {
	t.Helper()
	l, err := NewListing(CreateParams{
		ID:       "stay-1",
		Title:    " Diani Beach Cottage ",
		Category: CategoryStay,
		Price:    money.Must(10000, "USD"),
		Now:      time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return l
}

func TestNewListingDefaults(t *testing.T) {
	l := newStay(t)
	assert.Equal(t, "Diani Beach Cottage", l.Title)
	assert.Equal(t, StatusDraft, l.Status)
	assert.True(t, l.UsesRangeSelection())
	assert.Len(t, l.PendingEvents(), 1)
}

func TestNewListingValidation(t *testing.T) {
	_, err := NewListing(CreateParams{ID: "x", Title: "t", Category: "cruise", Price: money.Must(1, "USD")})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = NewListing(CreateParams{ID: "x", Title: "", Category: CategoryTour})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = NewListing(CreateParams{ID: "x", Title: "t", Category: CategoryTour, Price: money.Must(-1, "USD")})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestPublishLifecycle(t *testing.T) {
	l := newStay(t)
	now := time.Now()
	require.NoError(t, l.Publish(now))
	assert.True(t, l.IsPublished())
	require.NoError(t, l.Publish(now))
	require.NoError(t, l.Unpublish(now))
	assert.ErrorIs(t, l.Unpublish(now), ErrInvalidState)
}

func TestSetAvailabilityDedupesAndSorts(t *testing.T) {
	l := newStay(t)
	l.SetAvailability([]daterange.Day{
		daterange.MustParse("2025-03-05"),
		daterange.MustParse("2025-03-01"),
		daterange.MustParse("2025-03-05"),
		{},
	}, time.Now())
	assert.Equal(t, []daterange.Day{daterange.MustParse("2025-03-01"), daterange.MustParse("2025-03-05")}, l.Availability)
}

func TestToggleAvailableDate(t *testing.T) {
	l := newStay(t)
	today := daterange.MustParse("2025-03-01")

	open, err := l.ToggleAvailableDate(daterange.MustParse("2025-03-10"), today)
	require.NoError(t, err)
	assert.True(t, open)
	open, err = l.ToggleAvailableDate(daterange.MustParse("2025-03-02"), today)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, []daterange.Day{daterange.MustParse("2025-03-02"), daterange.MustParse("2025-03-10")}, l.Availability)

	open, err = l.ToggleAvailableDate(daterange.MustParse("2025-03-10"), today)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Equal(t, []daterange.Day{daterange.MustParse("2025-03-02")}, l.Availability)

	_, err = l.ToggleAvailableDate(daterange.MustParse("2025-02-28"), today)
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestFilterMatch(t *testing.T) {
	l := newStay(t)
	assert.True(t, Filter{}.Match(l))
	assert.False(t, Filter{PublishedOnly: true}.Match(l))
	assert.False(t, Filter{Category: CategoryTour}.Match(l))
	assert.True(t, Filter{Category: CategoryStay}.Match(l))
}
