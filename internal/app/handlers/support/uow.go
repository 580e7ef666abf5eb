package support

import (
	"context"
	"time"

	"tripdesk/internal/app/uow"
	"tripdesk/internal/domain/availability"
	domainlistings "tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
)

// BeginReadOnlyUnit reuses the unit already bound to ctx or opens a read-only
// one. cleanup is nil when the unit is borrowed.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	return unit, execCtx, func() { _ = unit.Rollback(execCtx) }, nil
}

// WithinUnit runs fn inside the unit bound to ctx, or inside a new writable
// unit that is committed when fn succeeds.
func WithinUnit(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := uow.Bind(ctx, unit)
	if err := fn(execCtx, unit); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	return unit.Commit(execCtx)
}

// LoadCalendar rebuilds the listing's calendar from a fresh read of its
// bookings. Nothing is cached between calls.
func LoadCalendar(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing, today daterange.Day) (*availability.Calendar, error) {
	bookings, err := unit.Bookings().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	booked, err := availability.BuildBookedDateSet(bookings)
	if err != nil {
		return nil, err
	}
	return availability.NewCalendar(today, listing.Availability, booked), nil
}

// Clock supplies the current instant; nil means time.Now.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Today is the calendar date at the clock's instant in loc (UTC when nil).
func (c Clock) Today(loc *time.Location) daterange.Day {
	now := c.Now()
	if loc != nil {
		now = now.In(loc)
	}
	return daterange.FromTime(now)
}
