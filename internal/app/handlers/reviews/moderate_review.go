package reviews

import (
	"context"
	"log/slog"
	"strings"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/outbox"
	"tripdesk/internal/app/uow"
	domainreviews "tripdesk/internal/domain/reviews"
)

const (
	moderateReviewKey = "admin.reviews.status"
	deleteReviewKey   = "admin.reviews.delete"
)

// Moderation holds what the back-office review handlers share.
type Moderation struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      support.Clock
	Logger     *slog.Logger
}

func (m *Moderation) info(ctx context.Context, msg string, args ...any) {
	if m.Logger != nil {
		m.Logger.InfoContext(ctx, msg, args...)
	}
}

// ModerateReviewCommand approves a review or sends it back to pending.
type ModerateReviewCommand struct {
	ReviewID string
	Status   string
}

func (c ModerateReviewCommand) Key() string { return moderateReviewKey }

func (c ModerateReviewCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c ModerateReviewCommand) Validate() error {
	if strings.TrimSpace(c.ReviewID) == "" {
		return ErrReviewIDRequired
	}
	_, err := domainreviews.ParseStatus(c.Status)
	return err
}

type ModerateReviewHandler struct {
	*Moderation
}

func (h *ModerateReviewHandler) Handle(ctx context.Context, cmd ModerateReviewCommand) (*dto.Review, error) {
	next, err := domainreviews.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	var result *dto.Review
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(strings.TrimSpace(cmd.ReviewID)))
		if err != nil {
			return err
		}
		previous := review.Status
		changed, err := review.SetStatus(next, h.Clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := unit.Reviews().Save(ctx, review); err != nil {
				return err
			}
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, review); err != nil {
				return err
			}
			h.info(ctx, "review moderated", "review_id", review.ID, "from", previous, "to", next)
		}
		mapped := dto.MapReview(review, nil, true)
		result = &mapped
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type DeleteReviewCommand struct {
	ReviewID string
}

func (c DeleteReviewCommand) Key() string { return deleteReviewKey }

func (c DeleteReviewCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c DeleteReviewCommand) Validate() error {
	if strings.TrimSpace(c.ReviewID) == "" {
		return ErrReviewIDRequired
	}
	return nil
}

type DeleteReviewHandler struct {
	*Moderation
}

// Handle removes the review permanently. The deletion event still reaches
// the outbox so consumers can drop cached copies.
func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (*dto.ReviewRemoval, error) {
	var result *dto.ReviewRemoval
	err := support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(strings.TrimSpace(cmd.ReviewID)))
		if err != nil {
			return err
		}
		review.Remove(h.Clock.Now())
		if err := unit.Reviews().Delete(ctx, review); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, review); err != nil {
			return err
		}
		h.info(ctx, "review deleted", "review_id", review.ID, "listing_id", review.ListingID)
		result = &dto.ReviewRemoval{ReviewID: string(review.ID)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[ModerateReviewCommand, *dto.Review] = (*ModerateReviewHandler)(nil)
var _ commands.Handler[DeleteReviewCommand, *dto.ReviewRemoval] = (*DeleteReviewHandler)(nil)
var _ middleware.Guarded = ModerateReviewCommand{}
var _ middleware.Guarded = DeleteReviewCommand{}
