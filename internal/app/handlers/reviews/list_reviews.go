package reviews

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
	domainauth "tripdesk/internal/domain/auth"
	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
)

const (
	listListingReviewsKey = "reviews.listing.list"
	listReviewsKey        = "admin.reviews.list"
)

// ListListingReviewsQuery returns the approved reviews of a storefront
// listing, newest first, with the rating summary.
type ListListingReviewsQuery struct {
	ListingID string
}

func (q ListListingReviewsQuery) Key() string { return listListingReviewsKey }

func (q ListListingReviewsQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return ErrListingIDRequired
	}
	return nil
}

type ListListingReviewsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListListingReviewsHandler) Handle(ctx context.Context, q ListListingReviewsQuery) (dto.ReviewCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(strings.TrimSpace(q.ListingID)))
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if !listing.IsPublished() && !isAdmin(ctx) {
		return dto.ReviewCollection{}, domainlistings.ErrListingNotPublic
	}
	all, err := unit.Reviews().ListByListing(execCtx, listing.ID)
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	approved := make([]*domainreviews.Review, 0, len(all))
	for _, r := range all {
		if r.IsApproved() {
			approved = append(approved, r)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool { return approved[i].CreatedAt.After(approved[j].CreatedAt) })

	summary := domainreviews.Summarize(approved)
	items := make([]dto.Review, 0, len(approved))
	for _, r := range approved {
		items = append(items, dto.MapReview(r, nil, false))
	}
	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "listing reviews listed", "listing_id", listing.ID, "count", len(items), "hidden", len(all)-len(items))
	}
	return dto.ReviewCollection{Items: items, Count: summary.Count, AverageRating: summary.Average}, nil
}

// ListReviewsQuery feeds the moderation table. Empty filters match
// everything.
type ListReviewsQuery struct {
	ListingID string
	Status    string
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

func (q ListReviewsQuery) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (q ListReviewsQuery) Validate() error {
	if strings.TrimSpace(q.Status) == "" {
		return nil
	}
	_, err := domainreviews.ParseStatus(q.Status)
	return err
}

type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (dto.ReviewCollection, error) {
	var status domainreviews.Status
	if strings.TrimSpace(q.Status) != "" {
		var err error
		if status, err = domainreviews.ParseStatus(q.Status); err != nil {
			return dto.ReviewCollection{}, err
		}
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var all []*domainreviews.Review
	if listingID := strings.TrimSpace(q.ListingID); listingID != "" {
		all, err = unit.Reviews().ListByListing(execCtx, domainlistings.ListingID(listingID))
	} else {
		all, err = unit.Reviews().List(execCtx)
	}
	if err != nil {
		return dto.ReviewCollection{}, err
	}

	kept := make([]*domainreviews.Review, 0, len(all))
	for _, r := range all {
		if status == "" || r.Status == status {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].CreatedAt.After(kept[j].CreatedAt) })

	cache := support.NewListingCache(unit.Listings())
	items := make([]dto.Review, 0, len(kept))
	for _, r := range kept {
		listing, err := cache.Get(execCtx, r.ListingID)
		if err != nil && h.Logger != nil {
			h.Logger.WarnContext(ctx, "listing missing for review", "review_id", r.ID, "listing_id", r.ListingID, "error", err)
		}
		items = append(items, dto.MapReview(r, listing, true))
	}
	summary := domainreviews.Summarize(kept)
	return dto.ReviewCollection{Items: items, Count: len(items), AverageRating: summary.Average}, nil
}

func isAdmin(ctx context.Context) bool {
	session, ok := domainauth.FromContext(ctx)
	return ok && session.IsAdmin()
}

var _ queries.Handler[ListListingReviewsQuery, dto.ReviewCollection] = (*ListListingReviewsHandler)(nil)
var _ queries.Handler[ListReviewsQuery, dto.ReviewCollection] = (*ListReviewsHandler)(nil)
var _ middleware.Guarded = ListReviewsQuery{}
