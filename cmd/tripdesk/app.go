package main

import (
	"log/slog"
	"time"

	"tripdesk/internal/app/bootstrap"
	authsvc "tripdesk/internal/app/services/auth"
	"tripdesk/internal/infra/config"
	ginserver "tripdesk/internal/infra/http/gin"
	infraoutbox "tripdesk/internal/infra/outbox"
	"tripdesk/internal/infra/security"
)

const eventSource = "tripdesk/api"

type application struct {
	handlers ginserver.Handlers
	relay    *infraoutbox.Worker
}

func buildApplication(cfg config.Config, logger *slog.Logger, infra *infrastructure) (application, error) {
	var verifierOpts []security.VerifierOption
	if cfg.JWTUserRoleClaim {
		logger.Warn("trusting user_metadata.role for admin access")
		verifierOpts = append(verifierOpts, security.WithUserMetadataRole())
	}
	verifier, err := security.NewJWTVerifier(cfg.JWTSecret, cfg.JWTAudience, verifierOpts...)
	if err != nil {
		return application{}, err
	}
	authService := &authsvc.Service{Verifier: verifier, Logger: logger}

	buses := bootstrap.NewBuses(bootstrap.Deps{
		UoWFactory:  infra.factory,
		Outbox:      infra.outbox,
		Idempotency: infra.idempotency,
		Clock:       time.Now,
		Location:    cfg.Location(),
		Currency:    cfg.BaseCurrency,
		EventSource: eventSource,
		Retryable:   infra.retryable,
		Logger:      logger,
	})

	relay := &infraoutbox.Worker{
		Queue:       infra.queue,
		Producer:    infra.producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      eventSource,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}

	return application{
		handlers: ginserver.Handlers{
			Listing:      ginserver.ListingHandler{Queries: buses.Queries, Logger: logger},
			Availability: ginserver.AvailabilityHandler{Queries: buses.Queries, Logger: logger},
			Pricing:      ginserver.PricingHandler{Queries: buses.Queries, Logger: logger},
			Booking:      ginserver.BookingHandler{Commands: buses.Commands, Logger: logger},
			Me:           ginserver.MeHandler{Queries: buses.Queries, Logger: logger},
			Auth:         ginserver.AuthHandler{},
			Admin: ginserver.AdminHandler{
				Commands: buses.Commands,
				Queries:  buses.Queries,
				Logger:   logger,
			},
			Review: ginserver.ReviewHandler{
				Commands: buses.Commands,
				Queries:  buses.Queries,
				Logger:   logger,
			},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		relay: relay,
	}, nil
}
