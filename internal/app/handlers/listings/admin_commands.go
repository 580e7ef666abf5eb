package listings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripdesk/internal/app/commands"
	"tripdesk/internal/app/dto"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/outbox"
	"tripdesk/internal/app/uow"
	domainlistings "tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

const (
	createListingKey      = "admin.listings.create"
	publishListingKey     = "admin.listings.publish"
	unpublishListingKey   = "admin.listings.unpublish"
	toggleAvailabilityKey = "admin.listings.availability.toggle"
	setAvailabilityKey    = "admin.listings.availability.set"
)

// Admin holds what every back-office listing handler needs.
type Admin struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       support.Clock
	Location    *time.Location
	Currency    string
	IDGenerator func() string
	Logger      *slog.Logger
}

func (a *Admin) newID() string {
	if a.IDGenerator != nil {
		return a.IDGenerator()
	}
	return uuid.NewString()
}

// currency prices new listings; empty means money.BaseCurrency.
func (a *Admin) currency() string {
	if a.Currency == "" {
		return money.BaseCurrency
	}
	return a.Currency
}

func (a *Admin) info(ctx context.Context, msg string, args ...any) {
	if a.Logger != nil {
		a.Logger.InfoContext(ctx, msg, args...)
	}
}

// mutate loads a listing, applies fn and stores the result with its events.
func (a *Admin) mutate(ctx context.Context, id string, fn func(*domainlistings.Listing) error) (*domainlistings.Listing, error) {
	var out *domainlistings.Listing
	err := support.WithinUnit(ctx, a.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(strings.TrimSpace(id)))
		if err != nil {
			return err
		}
		if err := fn(listing); err != nil {
			return err
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, a.Outbox, a.Encoder, listing); err != nil {
			return err
		}
		out = listing
		return nil
	})
	return out, err
}

type CreateListingCommand struct {
	Title        string
	Description  string
	Location     string
	Category     string
	PriceCents   int64
	Availability []daterange.Day
	Publish      bool
}

func (c CreateListingCommand) Key() string { return createListingKey }

func (c CreateListingCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c CreateListingCommand) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return domainlistings.ErrTitleRequired
	}
	if c.PriceCents < 0 {
		return domainlistings.ErrNegativePrice
	}
	_, err := domainlistings.ParseCategory(c.Category)
	return err
}

type CreateListingHandler struct {
	*Admin
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	category, err := domainlistings.ParseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(h.newID()),
		Title:        cmd.Title,
		Description:  cmd.Description,
		Location:     cmd.Location,
		Category:     category,
		Price:        money.Money{Amount: cmd.PriceCents, Currency: h.currency()},
		Availability: cmd.Availability,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	if cmd.Publish {
		if err := listing.Publish(now); err != nil {
			return nil, err
		}
	}

	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		return outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing)
	})
	if err != nil {
		return nil, err
	}
	h.info(ctx, "listing created", "listing_id", listing.ID, "category", listing.Category, "status", listing.Status)
	result := dto.MapListing(listing)
	return &result, nil
}

type PublishListingCommand struct {
	ListingID string
}

func (c PublishListingCommand) Key() string { return publishListingKey }

func (c PublishListingCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c PublishListingCommand) Validate() error { return requireID(c.ListingID) }

type PublishListingHandler struct {
	*Admin
}

func (h *PublishListingHandler) Handle(ctx context.Context, cmd PublishListingCommand) (*dto.Listing, error) {
	listing, err := h.mutate(ctx, cmd.ListingID, func(l *domainlistings.Listing) error {
		return l.Publish(h.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	h.info(ctx, "listing published", "listing_id", listing.ID)
	result := dto.MapListing(listing)
	return &result, nil
}

type UnpublishListingCommand struct {
	ListingID string
}

func (c UnpublishListingCommand) Key() string { return unpublishListingKey }

func (c UnpublishListingCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c UnpublishListingCommand) Validate() error { return requireID(c.ListingID) }

type UnpublishListingHandler struct {
	*Admin
}

func (h *UnpublishListingHandler) Handle(ctx context.Context, cmd UnpublishListingCommand) (*dto.Listing, error) {
	listing, err := h.mutate(ctx, cmd.ListingID, func(l *domainlistings.Listing) error {
		return l.Unpublish(h.Clock.Now())
	})
	if err != nil {
		return nil, err
	}
	h.info(ctx, "listing unpublished", "listing_id", listing.ID)
	result := dto.MapListing(listing)
	return &result, nil
}

// ToggleAvailabilityCommand is one click on the back-office calendar.
type ToggleAvailabilityCommand struct {
	ListingID string
	Date      daterange.Day
}

func (c ToggleAvailabilityCommand) Key() string { return toggleAvailabilityKey }

func (c ToggleAvailabilityCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c ToggleAvailabilityCommand) Validate() error {
	if c.Date.IsZero() {
		return daterange.ErrInvalidDay
	}
	return requireID(c.ListingID)
}

type ToggleAvailabilityHandler struct {
	*Admin
}

func (h *ToggleAvailabilityHandler) Handle(ctx context.Context, cmd ToggleAvailabilityCommand) (*dto.AvailabilityToggle, error) {
	var open bool
	listing, err := h.mutate(ctx, cmd.ListingID, func(l *domainlistings.Listing) error {
		var err error
		open, err = l.ToggleAvailableDate(cmd.Date, h.Clock.Today(h.Location))
		return err
	})
	if err != nil {
		return nil, err
	}
	h.info(ctx, "listing availability toggled", "listing_id", listing.ID, "date", cmd.Date.String(), "available", open)
	mapped := dto.MapListing(listing)
	return &dto.AvailabilityToggle{
		ListingID:    mapped.ID,
		Date:         cmd.Date.String(),
		Available:    open,
		Availability: mapped.Availability,
	}, nil
}

// SetAvailabilityCommand replaces the whole whitelist. An empty list opens
// every future day.
type SetAvailabilityCommand struct {
	ListingID string
	Dates     []daterange.Day
}

func (c SetAvailabilityCommand) Key() string { return setAvailabilityKey }

func (c SetAvailabilityCommand) RequiredAccess() middleware.Access { return middleware.AccessAdmin }

func (c SetAvailabilityCommand) Validate() error { return requireID(c.ListingID) }

type SetAvailabilityHandler struct {
	*Admin
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*dto.Listing, error) {
	listing, err := h.mutate(ctx, cmd.ListingID, func(l *domainlistings.Listing) error {
		l.SetAvailability(cmd.Dates, h.Clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.info(ctx, "listing availability replaced", "listing_id", listing.ID, "days", len(listing.Availability))
	result := dto.MapListing(listing)
	return &result, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrListingIDRequired
	}
	return nil
}

var _ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
var _ commands.Handler[PublishListingCommand, *dto.Listing] = (*PublishListingHandler)(nil)
var _ commands.Handler[UnpublishListingCommand, *dto.Listing] = (*UnpublishListingHandler)(nil)
var _ commands.Handler[ToggleAvailabilityCommand, *dto.AvailabilityToggle] = (*ToggleAvailabilityHandler)(nil)
var _ commands.Handler[SetAvailabilityCommand, *dto.Listing] = (*SetAvailabilityHandler)(nil)
