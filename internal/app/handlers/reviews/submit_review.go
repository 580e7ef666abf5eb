package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/outbox"
	"tripdesk/internal/app/uow"
	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

var (
	ErrListingIDRequired = errors.New("reviews: listing id is required")
	ErrReviewIDRequired  = errors.New("reviews: review id is required")
	ErrDuplicateReview   = errors.New("reviews: listing already reviewed by this user")
)

// SubmitReviewCommand files a review for moderation. One review per user and
// listing.
type SubmitReviewCommand struct {
	UserID     string
	AuthorName string
	ListingID  string
	Rating     int
	Comment    string
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

func (c SubmitReviewCommand) RequiredAccess() middleware.Access { return middleware.AccessSession }

func (c SubmitReviewCommand) Validate() error {
	switch {
	case strings.TrimSpace(c.ListingID) == "":
		return ErrListingIDRequired
	case strings.TrimSpace(c.UserID) == "":
		return domainreviews.ErrUserRequired
	}
	return domainreviews.ValidateRating(c.Rating)
}

type SubmitReviewHandler struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       support.Clock
	IDGenerator func() string
	Logger      *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*dto.Review, error) {
	var result *dto.Review
	err := support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(strings.TrimSpace(cmd.ListingID)))
		if err != nil {
			return err
		}
		if !listing.IsPublished() {
			return domainlistings.ErrListingNotPublic
		}
		existing, err := unit.Reviews().ListByListing(ctx, listing.ID)
		if err != nil {
			return err
		}
		for _, r := range existing {
			if r.UserID == cmd.UserID {
				return fmt.Errorf("%w: %s", ErrDuplicateReview, r.ID)
			}
		}

		review, err := domainreviews.Submit(domainreviews.SubmitParams{
			ID:         domainreviews.ReviewID(h.newID()),
			ListingID:  listing.ID,
			UserID:     cmd.UserID,
			AuthorName: cmd.AuthorName,
			Rating:     cmd.Rating,
			Comment:    cmd.Comment,
			CreatedAt:  h.Clock.Now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Reviews().Save(ctx, review); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, review); err != nil {
			return err
		}
		if h.Logger != nil {
			h.Logger.InfoContext(ctx, "review submitted", "review_id", review.ID, "listing_id", listing.ID, "user_id", review.UserID, "rating", review.Rating)
		}
		mapped := dto.MapReview(review, listing, true)
		result = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *SubmitReviewHandler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

var _ commands.Handler[SubmitReviewCommand, *dto.Review] = (*SubmitReviewHandler)(nil)
var _ middleware.Guarded = SubmitReviewCommand{}
