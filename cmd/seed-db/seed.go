package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/wallet"
)

// customerJSON is one record of the seed file.
type customerJSON struct {
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Password     string           `json:"password"`
	Phone        string           `json:"phone"`
	Wallet       *decimal.Decimal `json:"wallet"`
	RateDiscount *decimal.Decimal `json:"rate_discount"`
}

// readSeedFile decodes a JSON array of customers. Files ending in .gz are
// decompressed on the fly.
func readSeedFile(path string) ([]customerJSON, error) {
	slog.Info("reading seed file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReaderSize(f, 1<<20)
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return decodeSeed(r)
}

func decodeSeed(r io.Reader) ([]customerJSON, error) {
	var records []customerJSON
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.Wrap(err, "parse customers JSON")
	}
	return records, nil
}

type seeder struct {
	customers *customer.Service
	wallet    *wallet.Service
}

// seed registers every record through the same services the API uses, so
// passwords are hashed and discounts are range-checked. Records are inserted
// concurrently, bounded by limit.
func (s *seeder) seed(ctx context.Context, records []customerJSON, limit int) (int, error) {
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rec := range records {
		g.Go(func() error {
			if err := s.seedOne(ctx, rec); err != nil {
				return errors.Wrapf(err, "record %d (%s)", i, rec.Email)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *seeder) seedOne(ctx context.Context, rec customerJSON) error {
	c, err := s.customers.Create(ctx, customer.CreateRequest{
		Name:     rec.Name,
		Email:    rec.Email,
		Password: rec.Password,
		Phone:    rec.Phone,
	})
	if err != nil {
		return err
	}

	if rec.Wallet != nil && !rec.Wallet.IsZero() {
		if _, err := s.wallet.TopUp(ctx, c.ID, *rec.Wallet); err != nil {
			return errors.Wrap(err, "top up")
		}
	}
	if rec.RateDiscount != nil {
		if _, err := s.wallet.SetDiscount(ctx, c.ID, *rec.RateDiscount); err != nil {
			return errors.Wrap(err, "set discount")
		}
	}

	slog.Debug("seeded customer", slog.String("id", c.ID), slog.String("email", c.Email))
	return nil
}
