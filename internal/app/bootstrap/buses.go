// Package bootstrap registers every command and query handler on the buses
// and wraps them in the middleware pipeline.
package bootstrap

import (
	"log/slog"
	"time"

	"tripdesk/internal/app/commands"
	availabilityapp "tripdesk/internal/app/handlers/availability"
	bookingapp "tripdesk/internal/app/handlers/booking"
	listingapp "tripdesk/internal/app/handlers/listings"
	meapp "tripdesk/internal/app/handlers/me"
	pricingapp "tripdesk/internal/app/handlers/pricing"
	reviewapp "tripdesk/internal/app/handlers/reviews"
	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/middleware"
	"tripdesk/internal/app/outbox"
	"tripdesk/internal/app/queries"
	"tripdesk/internal/app/uow"
)

type Deps struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Idempotency middleware.IdempotencyStore
	Clock       support.Clock
	Location    *time.Location
	Currency    string
	EventSource string
	IDGenerator func() string
	// Retryable marks storage errors after which a command is rerun.
	Retryable func(error) bool
	Logger    *slog.Logger
}

// txAttempts bounds reruns of a command whose transaction conflicted.
const txAttempts = 3

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// NewBuses wires the handlers. Commands run through logging, authorization,
// validation, idempotency, a unit of work and the outbox flush, outermost
// first; the flush sits inside the unit so buffered events share its scope.
func NewBuses(d Deps) Buses {
	encoder := outbox.JSONEventEncoder{Source: d.EventSource}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, &bookingapp.RequestBookingHandler{
		UoWFactory:  d.UoWFactory,
		Outbox:      d.Outbox,
		Encoder:     encoder,
		Clock:       d.Clock,
		Location:    d.Location,
		IDGenerator: d.IDGenerator,
		Logger:      d.Logger,
	})
	commands.RegisterHandler(commandBus, &bookingapp.UpdatePaymentStatusHandler{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Clock:      d.Clock,
		Logger:     d.Logger,
	})
	admin := &listingapp.Admin{
		UoWFactory:  d.UoWFactory,
		Outbox:      d.Outbox,
		Encoder:     encoder,
		Clock:       d.Clock,
		Location:    d.Location,
		Currency:    d.Currency,
		IDGenerator: d.IDGenerator,
		Logger:      d.Logger,
	}
	commands.RegisterHandler(commandBus, &listingapp.CreateListingHandler{Admin: admin})
	commands.RegisterHandler(commandBus, &listingapp.PublishListingHandler{Admin: admin})
	commands.RegisterHandler(commandBus, &listingapp.UnpublishListingHandler{Admin: admin})
	commands.RegisterHandler(commandBus, &listingapp.ToggleAvailabilityHandler{Admin: admin})
	commands.RegisterHandler(commandBus, &listingapp.SetAvailabilityHandler{Admin: admin})
	commands.RegisterHandler(commandBus, &reviewapp.SubmitReviewHandler{
		UoWFactory:  d.UoWFactory,
		Outbox:      d.Outbox,
		Encoder:     encoder,
		Clock:       d.Clock,
		IDGenerator: d.IDGenerator,
		Logger:      d.Logger,
	})
	moderation := &reviewapp.Moderation{
		UoWFactory: d.UoWFactory,
		Outbox:     d.Outbox,
		Encoder:    encoder,
		Clock:      d.Clock,
		Logger:     d.Logger,
	}
	commands.RegisterHandler(commandBus, &reviewapp.ModerateReviewHandler{Moderation: moderation})
	commands.RegisterHandler(commandBus, &reviewapp.DeleteReviewHandler{Moderation: moderation})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, &availabilityapp.GetCalendarHandler{
		UoWFactory: d.UoWFactory,
		Clock:      d.Clock,
		Location:   d.Location,
	})
	queries.RegisterHandler(queryBus, &pricingapp.GetQuoteHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &listingapp.GetListingHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &listingapp.ListListingsHandler{UoWFactory: d.UoWFactory})
	queries.RegisterHandler(queryBus, &bookingapp.ListBookingsHandler{UoWFactory: d.UoWFactory, Logger: d.Logger})
	queries.RegisterHandler(queryBus, &meapp.ListUserBookingsHandler{UoWFactory: d.UoWFactory, Logger: d.Logger})
	queries.RegisterHandler(queryBus, &reviewapp.ListListingReviewsHandler{UoWFactory: d.UoWFactory, Logger: d.Logger})
	queries.RegisterHandler(queryBus, &reviewapp.ListReviewsHandler{UoWFactory: d.UoWFactory, Logger: d.Logger})

	authorizer := middleware.RoleAuthorizer{}
	validator := middleware.SelfValidator{}
	var idempotency middleware.CommandMiddleware
	if d.Idempotency != nil {
		idempotency = middleware.Idempotency(d.Idempotency, nil)
	}
	return Buses{
		Commands: middleware.ChainCommands(
			commandBus,
			middleware.Logging(d.Logger),
			middleware.Authorization(authorizer),
			middleware.Validation(validator),
			idempotency,
			middleware.Transaction(d.UoWFactory, middleware.TxPolicy{
				Retryable: d.Retryable,
				Attempts:  txAttempts,
				Logger:    d.Logger,
			}),
			middleware.OutboxFlush(d.Outbox),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryLogging(d.Logger),
			middleware.QueryAuthorization(authorizer),
			middleware.QueryValidation(validator),
		),
	}
}
