package availability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
	domainauth "tripdesk/internal/domain/auth"
	domainavailability "tripdesk/internal/domain/availability"
	domainlistings "tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

var (
	ErrListingIDRequired = errors.New("availability: listing id is required")
	ErrInvalidMonth      = errors.New("availability: month must be between 1 and 12")
)

// GetCalendarQuery renders one month of a listing's calendar. A zero Year or
// Month means the month containing Today; a zero Today means the clock's date.
// Start and End carry the visitor's current selection, if any.
type GetCalendarQuery struct {
	ListingID string
	Year      int
	Month     time.Month
	Today     daterange.Day
	Start     daterange.Day
	End       daterange.Day
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

func (q GetCalendarQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return ErrListingIDRequired
	}
	if q.Month < 0 || q.Month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, q.Month)
	}
	return nil
}

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Clock      support.Clock
	Location   *time.Location
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}
	if !listing.IsPublished() && !callerIsAdmin(ctx) {
		return dto.Calendar{}, domainlistings.ErrListingNotPublic
	}

	today := q.Today
	if today.IsZero() {
		today = h.Clock.Today(h.Location)
	}
	cal, err := support.LoadCalendar(execCtx, unit, listing, today)
	if err != nil {
		return dto.Calendar{}, err
	}

	year, month := q.Year, q.Month
	if year == 0 || month == 0 {
		year, month = today.Year(), today.Month()
	}

	sel, state, selErr := replaySelection(cal, listing.UsesRangeSelection(), q.Start, q.End)
	out := dto.Calendar{
		ListingID:  string(listing.ID),
		Category:   string(listing.Category),
		RangeMode:  listing.UsesRangeSelection(),
		Month:      fmt.Sprintf("%04d-%02d", year, int(month)),
		Today:      today.String(),
		Days:       dto.MapCalendarCells(cal.Month(year, month, sel)),
		BookedDays: cal.Booked().Strings(),
		Selection:  dto.MapSelection(sel, state),
	}
	if selErr != nil {
		out.SelectionError = selErr.Error()
	}
	return out, nil
}

// replaySelection feeds the requested days through the listing's selector the
// same way clicks would arrive, keeping whatever state the selector ends in.
func replaySelection(cal *domainavailability.Calendar, rangeMode bool, start, end daterange.Day) (domainavailability.Selection, domainavailability.SelectionState, error) {
	if start.IsZero() {
		return domainavailability.Selection{}, domainavailability.StateEmpty, nil
	}
	if !rangeMode {
		single := domainavailability.NewSingleSelector(cal)
		err := single.Click(start)
		if err == nil && !end.IsZero() {
			err = domainavailability.ErrRangeNotSupported
		}
		sel := single.Selection()
		if sel.IsEmpty() {
			return sel, domainavailability.StateEmpty, err
		}
		return sel, domainavailability.StateComplete, err
	}
	selector := domainavailability.NewRangeSelector(cal)
	if err := selector.Click(start); err != nil {
		return selector.Selection(), selector.State(), err
	}
	if !end.IsZero() {
		if err := selector.Click(end); err != nil {
			return selector.Selection(), selector.State(), err
		}
	}
	return selector.Selection(), selector.State(), nil
}

func callerIsAdmin(ctx context.Context) bool {
	session, ok := domainauth.FromContext(ctx)
	return ok && session.IsAdmin()
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
