package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/shop-wallet/internal/app"
	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
	"github.com/xenking/shop-wallet/internal/domain/wallet"
	"github.com/xenking/shop-wallet/internal/lock"
	"github.com/xenking/shop-wallet/internal/password"
)

func main() {
	var (
		store       app.StoreConfig
		seedFile    string
		concurrency int
		bcryptCost  int
	)

	flag.StringVar(&store.Backend, "store", app.StoreMongo, "store backend: mongo or postgres")
	flag.StringVar(&store.MongoURI, "mongo-uri", "", "MongoDB connection URI (or MONGODB_URI env)")
	flag.StringVar(&store.MongoDatabase, "mongo-database", "test", "MongoDB database name")
	flag.StringVar(&store.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedFile, "file", "db/seed/customers.json", "path to customers JSON file, optionally gzip-compressed (.gz)")
	flag.IntVar(&concurrency, "concurrency", 8, "number of customers inserted in parallel")
	flag.IntVar(&bcryptCost, "bcrypt-cost", password.DefaultCost, "bcrypt work factor")
	flag.Parse()

	if store.MongoURI == "" {
		store.MongoURI = os.Getenv("MONGODB_URI")
	}
	if store.DatabaseURL == "" {
		store.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	switch {
	case store.Backend == app.StoreMongo && store.MongoURI == "":
		slog.Error("mongo URI is required: set --mongo-uri or MONGODB_URI")
		os.Exit(1)
	case store.Backend == app.StorePostgres && store.DatabaseURL == "":
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, store, seedFile, concurrency, bcryptCost); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, cfg app.StoreConfig, seedFile string, concurrency, bcryptCost int) error {
	slog.Info("connecting to store", slog.String("backend", cfg.Backend))

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() { _ = st.Close(context.WithoutCancel(ctx)) }()

	records, err := readSeedFile(seedFile)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	s, err := newSeeder(st.Customers, st.Orders, bcryptCost)
	if err != nil {
		return err
	}

	n, err := s.seed(ctx, records, concurrency)
	if err != nil {
		return errors.Wrap(err, "seed customers")
	}
	slog.Info("seeded customers", slog.Int("count", n))
	return nil
}

func newSeeder(customers customer.Repository, orders order.Repository, bcryptCost int) (*seeder, error) {
	ws, err := wallet.NewService(customers, orders, lock.NewLocal(), noop.NewMeterProvider())
	if err != nil {
		return nil, errors.Wrap(err, "create wallet service")
	}
	return &seeder{
		customers: customer.NewService(customers, password.NewBcrypt(bcryptCost)),
		wallet:    ws,
	}, nil
}
