// Package server wires configuration, storage and services into a runnable
// HTTP application.
package server

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"billgen/internal/auth"
	"billgen/internal/billing"
	"billgen/internal/clients"
	"billgen/internal/config"
	"billgen/internal/dashboard"
	"billgen/internal/database"
	"billgen/internal/events"
	"billgen/internal/logger"
	"billgen/internal/store"
	"billgen/internal/store/memory"
	"billgen/internal/store/mongostore"
)

// Store is everything the services need from one backend.
type Store interface {
	store.UserStore
	store.BillStore
	store.SequenceStore
	store.ClientStore
	Ping(ctx context.Context) error
}

type App struct {
	Config    config.Config
	Store     Store
	Auth      *auth.Service
	Bills     *billing.Engine
	Clients   *clients.Service
	Dashboard *dashboard.Aggregator

	publisher events.Publisher
	mongo     *mongo.Client
}

// NewApp opens the configured store and event publisher and builds the
// services on top of them.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.WithComponent("server")
	app := &App{Config: cfg, publisher: events.Noop{}}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		app.Store = memory.New()
		log.Warn().Msg("using in-memory store, data is lost on exit")
	default:
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.DBName)
		log.Info().Str("db", db.Name()).Msg("MongoDB connected")

		if err := database.EnsureIndexes(ctx, db); err != nil {
			log.Warn().Err(err).Msg("index warning")
		}
		app.mongo = client
		app.Store = mongostore.New(db, cfg.RequestTimeout)
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			_ = app.Close(ctx)
			return nil, fmt.Errorf("events: %w", err)
		}
		app.publisher = publisher
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing bill events")
	}

	loc := cfg.Location()
	app.Auth = auth.NewService(app.Store, auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL), cfg.BcryptCost)
	app.Bills = billing.NewEngine(app.Store, app.Store,
		billing.WithPublisher(app.publisher),
		billing.WithOwnershipEnforcement(cfg.EnforceBillOwnership),
		billing.WithLocation(loc),
	)
	app.Clients = clients.NewService(app.Store)
	app.Dashboard = dashboard.NewAggregator(app.Store, dashboard.WithLocation(loc))
	return app, nil
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
