package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
	"github.com/xenking/shop-wallet/internal/domain/wallet"
	"github.com/xenking/shop-wallet/internal/lock"
	"github.com/xenking/shop-wallet/internal/storage/memory"
	"github.com/xenking/shop-wallet/internal/storage/mongo"
	"github.com/xenking/shop-wallet/internal/storage/postgres"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Customers customer.Repository
	Orders    order.Repository
	// Ping is nil for backends without an external dependency.
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStore connects to the configured backend and prepares its schema.
func OpenStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	switch cfg.Backend {
	case StoreMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Store{
			Customers: mongo.NewCustomerRepository(db),
			Orders:    mongo.NewOrderRepository(db),
			Ping:      func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close:     client.Disconnect,
		}, nil

	case StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Customers: postgres.NewCustomerRepository(pool),
			Orders:    postgres.NewOrderRepository(pool),
			Ping:      pool.Ping,
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case StoreMemory:
		return &Store{
			Customers: memory.NewCustomerRepository(),
			Orders:    memory.NewOrderRepository(),
			Close:     func(context.Context) error { return nil },
		}, nil

	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Locker is the customer lock of one backend with its lifecycle hooks.
type Locker struct {
	wallet.Locker
	// Ping is nil for in-process backends.
	Ping  func(ctx context.Context) error
	Close func() error
}

// OpenLocker builds the configured customer lock.
func OpenLocker(cfg LockConfig) (*Locker, error) {
	noClose := func() error { return nil }

	switch cfg.Backend {
	case LockLocal:
		return &Locker{Locker: lock.NewLocal(), Close: noClose}, nil

	case LockNone:
		return &Locker{Locker: lock.Nop{}, Close: noClose}, nil

	case LockRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		client := redis.NewClient(opts)
		l := lock.NewRedis(client, lock.RedisConfig{
			TTL:           cfg.TTL,
			RetryInterval: cfg.RetryInterval,
		})
		return &Locker{Locker: l, Ping: l.Ping, Close: client.Close}, nil

	default:
		return nil, errors.Errorf("unknown lock backend %q", cfg.Backend)
	}
}
