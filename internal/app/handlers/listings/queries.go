package listings

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
	domainauth "tripdesk/internal/domain/auth"
	domainlistings "tripdesk/internal/domain/listings"
)

const (
	getListingKey   = "listings.get"
	listListingsKey = "listings.list"
)

var ErrListingIDRequired = errors.New("listings: listing id is required")

type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

func (q GetListingQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return ErrListingIDRequired
	}
	return nil
}

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle hides drafts from everyone but admins.
func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(strings.TrimSpace(q.ListingID)))
	if err != nil {
		return dto.Listing{}, err
	}
	if !listing.IsPublished() && !isAdmin(ctx) {
		return dto.Listing{}, domainlistings.ErrListingNotPublic
	}
	return dto.MapListing(listing), nil
}

// ListListingsQuery lists the storefront by category. IncludeDrafts is for the
// back office only.
type ListListingsQuery struct {
	Category      string
	IncludeDrafts bool
}

func (q ListListingsQuery) Key() string { return listListingsKey }

func (q ListListingsQuery) RequiredAccess() middleware.Access {
	if q.IncludeDrafts {
		return middleware.AccessAdmin
	}
	return middleware.AccessPublic
}

func (q ListListingsQuery) Validate() error {
	if strings.TrimSpace(q.Category) == "" {
		return nil
	}
	_, err := domainlistings.ParseCategory(q.Category)
	return err
}

type ListListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListListingsHandler) Handle(ctx context.Context, q ListListingsQuery) (dto.ListingCollection, error) {
	filter := domainlistings.Filter{PublishedOnly: !q.IncludeDrafts}
	if strings.TrimSpace(q.Category) != "" {
		category, err := domainlistings.ParseCategory(q.Category)
		if err != nil {
			return dto.ListingCollection{}, err
		}
		filter.Category = category
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Listings().List(execCtx, filter)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return dto.MapListings(items), nil
}

func isAdmin(ctx context.Context) bool {
	session, ok := domainauth.FromContext(ctx)
	return ok && session.IsAdmin()
}

var _ queries.Handler[GetListingQuery, dto.Listing] = (*GetListingHandler)(nil)
var _ queries.Handler[ListListingsQuery, dto.ListingCollection] = (*ListListingsHandler)(nil)
var _ middleware.Guarded = ListListingsQuery{}
