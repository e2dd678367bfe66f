package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"shopapi/internal/config"
	"shopapi/internal/database"
	"shopapi/internal/database/migration"
	"shopapi/internal/events"
	"shopapi/internal/repository"
	"shopapi/internal/repository/cached"
	"shopapi/internal/repository/memory"
	mongostore "shopapi/internal/repository/mongo"
	"shopapi/internal/repository/postgres"
	"shopapi/internal/service"
	"shopapi/internal/storage"
)

type closer struct {
	name string
	fn   func() error
}

// closers releases resources in reverse order of acquisition.
type closers []closer

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, closer{name: name, fn: fn})
}

func (c *closers) closeAll(log zerolog.Logger) {
	for i := len(*c) - 1; i >= 0; i-- {
		if err := (*c)[i].fn(); err != nil {
			log.Warn().Err(err).Str("resource", (*c)[i].name).Msg("close failed")
		}
	}
	*c = nil
}

type stores struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

func openStores(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger, cleanup *closers) (*stores, error) {
	var st stores

	switch cfg.StoreDriver {
	case config.StoreMemory:
		st.users, st.products = memory.NewUsers(), memory.NewProducts()

	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		cleanup.add("postgres", db.Close)
		if err := migration.EnsureMigrated(ctx, db, log, database.HostOf(cfg.Database)); err != nil {
			return nil, err
		}
		st.users, st.products = postgres.NewUsers(db), postgres.NewProducts(db)

	case config.StoreMongo:
		client, db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		cleanup.add("mongo", func() error { return client.Disconnect(context.Background()) })
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		st.users, st.products = mongostore.NewUsers(db), mongostore.NewProducts(db)

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.Redis.Addr != "" {
		rdb := cached.NewRedis(cfg.Redis.Addr)
		cleanup.add("redis", rdb.Close)
		if err := rdb.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, product reads fall back to the store")
		}
		st.products = &cached.Products{Repo: st.products, Cache: rdb, TTL: cfg.Redis.TTL, Log: log}
	}

	return &st, nil
}

func openNotifiers(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger, cleanup *closers) ([]service.OrderNotifier, error) {
	var out []service.OrderNotifier

	switch cfg.Events.Driver {
	case config.EventsNone:
	case config.EventsRabbit:
		conn, err := events.DialRabbit(cfg.Events.RabbitURL, cfg.Events.RabbitExchange)
		if err != nil {
			return nil, err
		}
		cleanup.add("rabbitmq", conn.Close)
		out = append(out, events.NewRabbitPublisher(conn.Ch, cfg.Events.RabbitExchange))
	case config.EventsNATS:
		nc, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.ServiceName, log)
		if err != nil {
			return nil, err
		}
		cleanup.add("nats", nc.Drain)
		out = append(out, events.NewNATSPublisher(nc))
	default:
		return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.Events.Driver)
	}

	if cfg.MinIO.Endpoint != "" {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("initialize object storage: %w", err)
		}
		out = append(out, storage.NewReceipts(objStore))
	}

	return out, nil
}
