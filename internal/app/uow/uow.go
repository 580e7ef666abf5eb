package uow

import (
	"context"

	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
)

// UnitOfWork scopes the aggregate repositories to one transaction.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
