package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
	domainavailability "tripdesk/internal/domain/availability"
	domainlistings "tripdesk/internal/domain/listings"
	domainpricing "tripdesk/internal/domain/pricing"
	"tripdesk/internal/domain/shared/daterange"
)

const getQuoteKey = "pricing.quote"

var ErrListingIDRequired = errors.New("pricing: listing id is required")

// GetQuoteQuery prices a selection without checking the calendar. Booking
// requests re-validate availability before anything is stored.
type GetQuoteQuery struct {
	ListingID string
	Start     daterange.Day
	End       daterange.Day
	Guests    int
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

func (q GetQuoteQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return ErrListingIDRequired
	}
	if q.Start.IsZero() {
		return domainavailability.ErrSelectionEmpty
	}
	if !q.End.IsZero() && !q.End.After(q.Start) {
		return fmt.Errorf("%w: %s..%s", daterange.ErrInvalidRange, q.Start, q.End)
	}
	if q.Guests < 1 {
		return domainpricing.ErrInvalidGuests
	}
	if q.Guests > domainpricing.MaxGuests {
		return fmt.Errorf("%w: %d > %d", domainpricing.ErrTooManyGuests, q.Guests, domainpricing.MaxGuests)
	}
	return nil
}

type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Quote{}, err
	}
	if !listing.IsPublished() {
		return dto.Quote{}, domainlistings.ErrListingNotPublic
	}

	sel := domainavailability.Range(q.Start, q.End)
	breakdown, err := domainpricing.Quote(listing, sel, q.Guests)
	if err != nil {
		return dto.Quote{}, err
	}
	end := ""
	if sel.HasEnd() {
		end = sel.End.String()
	}
	return dto.MapQuote(string(listing.ID), sel.Start.String(), end, breakdown), nil
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
