// Package mongo implements the customer and order repositories on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	customersCollection = "customers"
	ordersCollection    = "orders"
)

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: primitive.D{{Key: "customer_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating orders.customer_id index: %w", err)
	}
	return nil
}

// decimal128Digits is the significand precision of BSON Decimal128.
const decimal128Digits = 34

// fitDecimal128 rounds d half away from zero to the significant digits a
// Decimal128 can hold. Values that already fit are returned unchanged.
func fitDecimal128(d decimal.Decimal) decimal.Decimal {
	digits := len(new(big.Int).Abs(d.Coefficient()).String())
	if digits <= decimal128Digits {
		return d
	}
	drop := int32(digits - decimal128Digits)
	return d.Round(-(d.Exponent() + drop))
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(fitDecimal128(d).String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("converting %s to decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("converting decimal128 %s: %w", v, err)
	}
	return d, nil
}

// objectID parses a hex id. ok is false for anything that is not a valid
// ObjectID, which callers treat as "no such document".
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
