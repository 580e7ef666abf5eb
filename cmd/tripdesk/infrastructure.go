package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"tripdesk/internal/app/middleware"
	appoutbox "tripdesk/internal/app/outbox"
	"tripdesk/internal/app/uow"
	"tripdesk/internal/infra/broker/kafka"
	rediscache "tripdesk/internal/infra/cache/redis"
	"tripdesk/internal/infra/config"
	mongostore "tripdesk/internal/infra/db/mongo"
	"tripdesk/internal/infra/obs"
	infraoutbox "tripdesk/internal/infra/outbox"
	"tripdesk/internal/infra/storage/memory"
)

// infrastructure is everything the buses need from the outside world,
// selected by the configured drivers.
type infrastructure struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	queue       infraoutbox.Queue
	producer    infraoutbox.Producer
	idempotency middleware.IdempotencyStore
	retryable   func(error) bool
	checks      map[string]obs.Check
	closers     []func(ctx context.Context) error
}

func openInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{checks: map[string]obs.Check{}}
	var mongoClient *mongostore.Client

	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		mongoClient = client
		infra.closers = append(infra.closers, client.Close)
		infra.checks["mongo"] = client.Ping

		factory := mongostore.NewFactory(client.DB)
		if err := factory.Listings.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("listing indexes: %w", err)
		}
		if err := factory.Bookings.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("booking indexes: %w", err)
		}
		if err := factory.Reviews.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("review indexes: %w", err)
		}
		store, err := infraoutbox.NewStore(ctx, client.DB)
		if err != nil {
			return nil, fmt.Errorf("outbox store: %w", err)
		}
		infra.factory, infra.outbox, infra.queue = factory, store, store
		infra.retryable = mongostore.IsRetryable
	default:
		store := memory.NewStore()
		box := memory.NewOutbox()
		infra.factory, infra.outbox, infra.queue = memory.NewFactory(store), box, box
		infra.checks["store"] = store.Ping
	}

	switch cfg.IdempotencyDriver {
	case config.IdempotencyRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := rediscache.NewIdempotencyStore(client, cfg.IdempotencyTTL)
		infra.idempotency = store
		infra.checks["redis"] = store.Ping
		infra.closers = append(infra.closers, func(context.Context) error { return client.Close() })
	case config.IdempotencyMongo:
		store, err := mongostore.NewIdempotencyStore(ctx, mongoClient.DB, cfg.IdempotencyTTL)
		if err != nil {
			return nil, fmt.Errorf("idempotency store: %w", err)
		}
		infra.idempotency = store
	default:
		infra.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		infra.producer = producer
		infra.closers = append(infra.closers, func(context.Context) error { return producer.Close() })
	} else {
		logger.Info("no kafka brokers configured, events will be logged")
		infra.producer = kafka.LogProducer{Logger: logger}
	}
	return infra, nil
}

func (i *infrastructure) close(ctx context.Context) {
	for j := len(i.closers) - 1; j >= 0; j-- {
		_ = i.closers[j](ctx)
	}
}
